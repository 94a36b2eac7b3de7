package app

import (
	"context"
	"strconv"

	"promptforge/internal/domain"
	"promptforge/internal/ports"
)

// Setting keys for the session-wide active endpoint and model. Values are
// read when a call starts; in-flight calls keep the values they started
// with.
const (
	SettingActiveEndpoint = "active_endpoint_id"
	SettingActiveModel    = "active_model"
)

type SettingsAPI struct {
	repo  ports.SettingsRepository
	calls ports.CallLogRepository
}

func NewSettingsAPI(repo ports.SettingsRepository, calls ports.CallLogRepository) *SettingsAPI {
	return &SettingsAPI{repo: repo, calls: calls}
}

func (a *SettingsAPI) Get(key string) (string, error) {
	return a.repo.Get(context.Background(), key)
}

func (a *SettingsAPI) Set(key, value string) (bool, error) {
	if err := a.repo.Set(context.Background(), key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (a *SettingsAPI) SetActive(endpointID int64, model string) (bool, error) {
	ctx := context.Background()
	if err := a.repo.Set(ctx, SettingActiveEndpoint, strconv.FormatInt(endpointID, 10)); err != nil {
		return false, err
	}
	if err := a.repo.Set(ctx, SettingActiveModel, model); err != nil {
		return false, err
	}
	return true, nil
}

// CallHistory returns the most recent external-call records.
func (a *SettingsAPI) CallHistory(limit int) ([]*domain.CallRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return a.calls.List(context.Background(), limit)
}

func activeEndpointID(ctx context.Context, settings ports.SettingsRepository) int64 {
	v, err := settings.Get(ctx, SettingActiveEndpoint)
	if err != nil || v == "" {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
