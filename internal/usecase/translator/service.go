// Package translator sends prompt text through the external transform while
// guarding placeholders, with cache-before-call semantics.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"promptforge/internal/adapters/cache"
	"promptforge/internal/domain"
	"promptforge/internal/ports"
	"promptforge/internal/usecase/guard"
)

// Separator joins guarded segments when several fields ride in one call.
const Separator = "\n---\n"

type Deps struct {
	Endpoints ports.EndpointRepository
	Cache     ports.TransformCache
	Prompt    ports.InstructionRenderer
	Calls     ports.CallLogRepository
	// BuildProvider returns a concrete ports.Provider for an endpoint record.
	BuildProvider func(*domain.Endpoint) (ports.Provider, error)
	Logger        *zap.Logger
}

type Service struct {
	d  Deps
	sf singleflight.Group
}

func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Service{d: d}
}

type TranslateArgs struct {
	EndpointID     int64
	Text           string
	TargetLang     string
	Model          string
	SystemOverride string
	UserOverride   string
	BypassCache    bool
}

// TranslateResult carries the restored text plus the integrity report of the
// restore. A non-clean report means the transform touched a guard token and
// the caller should decide whether to trust the output.
type TranslateResult struct {
	Text      string
	Report    guard.Report
	FromCache bool
}

// TranslateOne transforms a single text field. Placeholders are swapped for
// guard tokens before the call and swapped back after; the raw (still
// guarded) transform output is what gets cached, so a cache hit goes through
// the same restore path as a live call.
func (s *Service) TranslateOne(ctx context.Context, a TranslateArgs) (TranslateResult, error) {
	if strings.TrimSpace(a.Text) == "" {
		return TranslateResult{}, errors.New("text is required")
	}
	ep, err := s.d.Endpoints.Get(ctx, a.EndpointID)
	if err != nil {
		return TranslateResult{}, err
	}
	if ep == nil {
		return TranslateResult{}, fmt.Errorf("endpoint %d not found", a.EndpointID)
	}
	model := a.Model
	if model == "" {
		model = ep.Model
	}

	guarded, m := guard.Protect(a.Text)

	values := map[string]string{"target_lang": a.TargetLang, "text": guarded}
	system := a.SystemOverride
	user := a.UserOverride
	if system == "" {
		system, err = s.d.Prompt.Render(ctx, "endpoint", &ep.ID, "translate", "system", values)
		if err != nil {
			return TranslateResult{}, err
		}
	}
	if user == "" {
		user, err = s.d.Prompt.Render(ctx, "endpoint", &ep.ID, "translate", "user", values)
		if err != nil {
			return TranslateResult{}, err
		}
	}

	raw, fromCache, err := s.complete(ctx, ep, "translate", model, system, user, a.BypassCache)
	if err != nil {
		return TranslateResult{}, err
	}
	restored, rep := guard.Restore(strings.TrimSpace(raw), m)
	if !rep.Clean() {
		s.d.Logger.Warn("placeholder restore degraded",
			zap.Strings("missing", rep.Missing),
			zap.Strings("duplicated", rep.Duplicated))
	}
	return TranslateResult{Text: restored, Report: rep, FromCache: fromCache}, nil
}

type FieldsArgs struct {
	EndpointID  int64
	Fields      []string
	TargetLang  string
	Model       string
	BypassCache bool
}

type FieldsResult struct {
	Fields    []string
	Reports   []guard.Report
	FromCache bool
}

// TranslateFields transforms several fields in one external call by joining
// their guarded forms with Separator. When the transform mangles the
// separator the restore degrades to best effort over the whole output; the
// per-segment reports say so.
func (s *Service) TranslateFields(ctx context.Context, a FieldsArgs) (FieldsResult, error) {
	if len(a.Fields) == 0 {
		return FieldsResult{}, errors.New("at least one field is required")
	}
	ep, err := s.d.Endpoints.Get(ctx, a.EndpointID)
	if err != nil {
		return FieldsResult{}, err
	}
	if ep == nil {
		return FieldsResult{}, fmt.Errorf("endpoint %d not found", a.EndpointID)
	}
	model := a.Model
	if model == "" {
		model = ep.Model
	}

	combined, maps := guard.ProtectCombined(a.Fields, Separator)
	values := map[string]string{"target_lang": a.TargetLang, "text": combined}
	system, err := s.d.Prompt.Render(ctx, "endpoint", &ep.ID, "translate", "system", values)
	if err != nil {
		return FieldsResult{}, err
	}
	user, err := s.d.Prompt.Render(ctx, "endpoint", &ep.ID, "translate", "user", values)
	if err != nil {
		return FieldsResult{}, err
	}

	raw, fromCache, err := s.complete(ctx, ep, "translate", model, system, user, a.BypassCache)
	if err != nil {
		return FieldsResult{}, err
	}
	fields, reports := guard.RestoreCombined(strings.TrimSpace(raw), maps, Separator)
	for _, rep := range reports {
		if !rep.Clean() {
			s.d.Logger.Warn("combined restore degraded",
				zap.Bool("separator_lost", rep.SeparatorLost),
				zap.Strings("missing", rep.Missing))
			break
		}
	}
	return FieldsResult{Fields: fields, Reports: reports, FromCache: fromCache}, nil
}

// complete consults the cache, then issues the external call. Concurrent
// calls for the same key are collapsed into one via singleflight, which
// keeps one writer per key without a UI-level guard.
func (s *Service) complete(ctx context.Context, ep *domain.Endpoint, kind, model, system, user string, bypass bool) (string, bool, error) {
	key := cache.Key(model, system, user)
	if !bypass {
		if e, _ := s.d.Cache.Get(ctx, key); e != nil {
			s.record(ctx, kind, model, "cached", "", 0)
			return e.Result, true, nil
		}
	}
	if s.d.BuildProvider == nil {
		return "", false, fmt.Errorf("translator: provider builder missing")
	}
	adapter, err := s.d.BuildProvider(ep)
	if err != nil {
		return "", false, err
	}
	started := time.Now()
	out, err, _ := s.sf.Do(key, func() (any, error) {
		return adapter.Complete(ctx, ports.CompleteParams{
			Model:        model,
			SystemPrompt: system,
			UserPrompt:   user,
			Temperature:  0.0,
		})
	})
	elapsed := time.Since(started)
	if err != nil {
		s.record(ctx, kind, model, "failed", err.Error(), elapsed.Milliseconds())
		return "", false, err
	}
	raw := out.(string)
	_ = s.d.Cache.Put(ctx, &domain.CacheEntry{Key: key, Model: model, Result: raw})
	s.record(ctx, kind, model, "ok", "", elapsed.Milliseconds())
	return raw, false, nil
}

func (s *Service) record(ctx context.Context, kind, model, status, errMsg string, durationMS int64) {
	if s.d.Calls == nil {
		return
	}
	_ = s.d.Calls.Add(ctx, &domain.CallRecord{Kind: kind, Model: model, Status: status, Error: errMsg, DurationMS: durationMS})
}
