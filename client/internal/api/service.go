package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type (
	Service interface {
		ProfileService
		BackupService
	}

	ProfileService interface {
		CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error)
		ListProfiles(ctx context.Context) ([]Profile, error)
		GetProfile(ctx context.Context, profileID uuid.UUID) (Profile, error)
		DeleteProfile(ctx context.Context, profileID uuid.UUID) error
		ActivateProfile(ctx context.Context, profileID uuid.UUID) error
		ConfigureStorage(ctx context.Context, params ConfigureStorageParams) error
	}

	BackupService interface {
		RunBackup(ctx context.Context, profileID uuid.UUID) (Operation, error)
		PreviewBackup(ctx context.Context, profileID uuid.UUID) (Preview, error)
		Restore(ctx context.Context, profileID uuid.UUID, params RestoreParams) (Operation, error)
		ListFiles(ctx context.Context, profileID uuid.UUID, path string) ([]CloudFile, error)
		History(ctx context.Context, profileID uuid.UUID) ([]Operation, error)
		SetSchedule(ctx context.Context, profileID uuid.UUID, params SetScheduleParams) (Schedule, error)
		RemoveSchedule(ctx context.Context, profileID uuid.UUID) error
		ScheduleStatus(ctx context.Context, profileID uuid.UUID) (*Schedule, error)
		SyncLogs(ctx context.Context) (int, error)
		WatchEvents(ctx context.Context, profileID string) (<-chan Event, error)
		Status(ctx context.Context) (Status, error)
	}
)

type service struct {
	apiClient Client
}

func NewService(apiClient Client) Service {
	return service{apiClient: apiClient}
}

func (s service) CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error) {
	var response struct {
		Data Profile `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "POST",
		Path:     "profiles",
		Body:     params,
		Response: &response,
	})
	return response.Data, err
}

func (s service) ListProfiles(ctx context.Context) ([]Profile, error) {
	var response struct {
		Data []Profile `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "GET",
		Path:     "profiles",
		Response: &response,
	})
	if err != nil {
		return nil, err
	}
	return response.Data, nil
}

func (s service) GetProfile(ctx context.Context, profileID uuid.UUID) (Profile, error) {
	var response struct {
		Data Profile `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "GET",
		Path:     fmt.Sprintf("profiles/%s", profileID),
		Response: &response,
	})
	return response.Data, err
}

func (s service) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	return s.apiClient.Do(ctx, Params{
		Method: "DELETE",
		Path:   fmt.Sprintf("profiles/%s", profileID),
	})
}

func (s service) ActivateProfile(ctx context.Context, profileID uuid.UUID) error {
	return s.apiClient.Do(ctx, Params{
		Method: "POST",
		Path:   fmt.Sprintf("profiles/%s/activate", profileID),
	})
}

func (s service) ConfigureStorage(ctx context.Context, params ConfigureStorageParams) error {
	return s.apiClient.Do(ctx, Params{
		Method: "POST",
		Path:   "storage",
		Body:   params,
	})
}

func (s service) RunBackup(ctx context.Context, profileID uuid.UUID) (Operation, error) {
	var response struct {
		Data Operation `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "POST",
		Path:     fmt.Sprintf("profiles/%s/backup", profileID),
		Response: &response,
	})
	return response.Data, err
}

func (s service) PreviewBackup(ctx context.Context, profileID uuid.UUID) (Preview, error) {
	var response struct {
		Data Preview `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "GET",
		Path:     fmt.Sprintf("profiles/%s/preview", profileID),
		Response: &response,
	})
	return response.Data, err
}

func (s service) Restore(ctx context.Context, profileID uuid.UUID, params RestoreParams) (Operation, error) {
	var response struct {
		Data Operation `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "POST",
		Path:     fmt.Sprintf("profiles/%s/restore", profileID),
		Body:     params,
		Response: &response,
	})
	return response.Data, err
}

func (s service) ListFiles(ctx context.Context, profileID uuid.UUID, path string) ([]CloudFile, error) {
	var response struct {
		Data []CloudFile `json:"data"`
	}

	param := Params{
		Method:   "GET",
		Path:     fmt.Sprintf("profiles/%s/files", profileID),
		Response: &response,
	}
	if path != "" {
		param.QueryParams = map[string]string{"path": path}
	}

	if err := s.apiClient.Do(ctx, param); err != nil {
		return nil, err
	}
	return response.Data, nil
}

func (s service) History(ctx context.Context, profileID uuid.UUID) ([]Operation, error) {
	var response struct {
		Data []Operation `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "GET",
		Path:     fmt.Sprintf("profiles/%s/operations", profileID),
		Response: &response,
	})
	if err != nil {
		return nil, err
	}
	return response.Data, nil
}

func (s service) SetSchedule(ctx context.Context, profileID uuid.UUID, params SetScheduleParams) (Schedule, error) {
	var response struct {
		Data Schedule `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "PUT",
		Path:     fmt.Sprintf("profiles/%s/schedule", profileID),
		Body:     params,
		Response: &response,
	})
	return response.Data, err
}

func (s service) RemoveSchedule(ctx context.Context, profileID uuid.UUID) error {
	return s.apiClient.Do(ctx, Params{
		Method: "DELETE",
		Path:   fmt.Sprintf("profiles/%s/schedule", profileID),
	})
}

func (s service) ScheduleStatus(ctx context.Context, profileID uuid.UUID) (*Schedule, error) {
	var response struct {
		Data *Schedule `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "GET",
		Path:     fmt.Sprintf("profiles/%s/schedule", profileID),
		Response: &response,
	})
	if err != nil {
		return nil, err
	}
	return response.Data, nil
}

func (s service) SyncLogs(ctx context.Context) (int, error) {
	var response struct {
		Data struct {
			NewOperations int `json:"new_operations"`
		} `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "POST",
		Path:     "logs/sync",
		Response: &response,
	})
	return response.Data.NewOperations, err
}

func (s service) WatchEvents(ctx context.Context, profileID string) (<-chan Event, error) {
	param := Params{
		Method: "GET",
		Path:   "events",
	}
	if profileID != "" {
		param.QueryParams = map[string]string{"profile_id": profileID}
	}

	body, err := s.apiClient.SSE(ctx, param)
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, 100)
	go func() {
		defer close(ch)
		defer body.Close()

		sc := bufio.NewScanner(body)
		for sc.Scan() {
			if len(sc.Bytes()) == 0 {
				continue
			}
			ev := &Event{}
			if err := json.Unmarshal(sc.Bytes(), ev); err != nil {
				continue
			}
			ch <- *ev
		}
	}()
	return ch, nil
}

func (s service) Status(ctx context.Context) (Status, error) {
	var response struct {
		Data Status `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "GET",
		Path:     "status",
		Response: &response,
	})
	return response.Data, err
}
