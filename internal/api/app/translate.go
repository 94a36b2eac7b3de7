package app

import (
	"context"

	"promptforge/internal/ports"
	"promptforge/internal/usecase/translator"
)

type TranslateAPI struct {
	svc      *translator.Service
	settings ports.SettingsRepository
}

func NewTranslateAPI(svc *translator.Service, settings ports.SettingsRepository) *TranslateAPI {
	return &TranslateAPI{svc: svc, settings: settings}
}

type TranslateRequest struct {
	EndpointID  int64  `json:"endpoint_id"`
	Text        string `json:"text"`
	TargetLang  string `json:"target_lang"`
	Model       string `json:"model"`
	BypassCache bool   `json:"bypass_cache"`
}

type TranslateResponse struct {
	Text      string   `json:"text"`
	FromCache bool     `json:"from_cache"`
	Clean     bool     `json:"clean"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Translate transforms a single text field. The endpoint and model are
// resolved from the active settings when the request leaves them empty,
// and are fixed from that point on.
func (a *TranslateAPI) Translate(req TranslateRequest) (TranslateResponse, error) {
	ctx := context.Background()
	endpointID, model := a.resolve(ctx, req.EndpointID, req.Model)
	res, err := a.svc.TranslateOne(ctx, translator.TranslateArgs{
		EndpointID:  endpointID,
		Text:        req.Text,
		TargetLang:  req.TargetLang,
		Model:       model,
		BypassCache: req.BypassCache,
	})
	if err != nil {
		return TranslateResponse{}, err
	}
	return TranslateResponse{
		Text:      res.Text,
		FromCache: res.FromCache,
		Clean:     res.Report.Clean(),
		Warnings:  restoreWarnings(res.Report),
	}, nil
}

type TranslateFieldsRequest struct {
	EndpointID  int64    `json:"endpoint_id"`
	Fields      []string `json:"fields"`
	TargetLang  string   `json:"target_lang"`
	Model       string   `json:"model"`
	BypassCache bool     `json:"bypass_cache"`
}

type TranslateFieldsResponse struct {
	Fields    []string `json:"fields"`
	FromCache bool     `json:"from_cache"`
	Clean     bool     `json:"clean"`
	Warnings  []string `json:"warnings,omitempty"`
}

// TranslateFields transforms several fields in a single external call.
func (a *TranslateAPI) TranslateFields(req TranslateFieldsRequest) (TranslateFieldsResponse, error) {
	ctx := context.Background()
	endpointID, model := a.resolve(ctx, req.EndpointID, req.Model)
	res, err := a.svc.TranslateFields(ctx, translator.FieldsArgs{
		EndpointID:  endpointID,
		Fields:      req.Fields,
		TargetLang:  req.TargetLang,
		Model:       model,
		BypassCache: req.BypassCache,
	})
	if err != nil {
		return TranslateFieldsResponse{}, err
	}
	resp := TranslateFieldsResponse{Fields: res.Fields, FromCache: res.FromCache, Clean: true}
	for _, rep := range res.Reports {
		if !rep.Clean() {
			resp.Clean = false
		}
		resp.Warnings = append(resp.Warnings, restoreWarnings(rep)...)
	}
	return resp, nil
}

// resolve fills endpoint and model from the active settings. The returned
// values are captured at call start; later settings changes do not affect
// a request already resolved.
func (a *TranslateAPI) resolve(ctx context.Context, endpointID int64, model string) (int64, string) {
	if endpointID == 0 && a.settings != nil {
		endpointID = activeEndpointID(ctx, a.settings)
	}
	if model == "" && a.settings != nil {
		model, _ = a.settings.Get(ctx, SettingActiveModel)
	}
	return endpointID, model
}
