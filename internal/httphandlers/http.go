package httphandlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"nimbus/internal/eventbus"
	"nimbus/internal/manager"
	"nimbus/internal/store"
	"nimbus/internal/types"
	"nimbus/logger"
)

// backupTimeout bounds a single backup or restore request.
const backupTimeout = 6 * time.Hour

type (
	ApiHandler struct {
		mn manager.Manager
	}
)

func NewApiHandler(mn manager.Manager) *ApiHandler {
	return &ApiHandler{mn: mn}
}

func (handler *ApiHandler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := handler.mn.ValidateAccessKey(r.Header.Get(authorizationHeader)); err != nil {
			unauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (handler *ApiHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var params types.CreateProfileParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, err)
		return
	}

	profile, err := handler.mn.CreateProfile(r.Context(), params)
	if err != nil {
		serverError(w, err)
		return
	}

	ok(w, "profile created", profile)
}

func (handler *ApiHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	var params types.UpdateProfileParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, err)
		return
	}
	params.ProfileID = profileID

	profile, err := handler.mn.UpdateProfile(r.Context(), params)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "profile updated", profile)
}

func (handler *ApiHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	if err := handler.mn.DeleteProfile(r.Context(), profileID); err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "profile deleted", nil)
}

func (handler *ApiHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	profile, err := handler.mn.GetProfile(r.Context(), profileID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "profile", profile)
}

func (handler *ApiHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := handler.mn.ListProfiles(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}

	ok(w, "profiles", profiles)
}

func (handler *ApiHandler) ActivateProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	if err := handler.mn.ActivateProfile(r.Context(), profileID); err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "profile activated", nil)
}

func (handler *ApiHandler) ConfigureStorage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccessKeyID string `json:"access_key_id"`
		SecretKey   string `json:"secret_key"`
		Region      string `json:"region"`
		Endpoint    string `json:"endpoint"`
		Bucket      string `json:"bucket"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, err)
		return
	}

	cred := types.StorageCredentials{
		AccessKeyID: body.AccessKeyID,
		SecretKey:   body.SecretKey,
		Region:      body.Region,
		Endpoint:    body.Endpoint,
	}
	if err := handler.mn.ConfigureStorage(r.Context(), cred, body.Bucket); err != nil {
		serverError(w, err)
		return
	}

	ok(w, "storage configured", nil)
}

func (handler *ApiHandler) RunBackup(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	logger.Info("starting backup", zap.String("profile_id", profileID.String()))
	op, err := handler.mn.RunBackup(ctx, profileID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "backup finished", op)
}

func (handler *ApiHandler) PreviewBackup(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	preview, err := handler.mn.PreviewBackup(r.Context(), profileID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "preview", preview)
}

func (handler *ApiHandler) Restore(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	var params types.RestoreParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, err)
		return
	}
	params.ProfileID = profileID

	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	op, err := handler.mn.Restore(ctx, params)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "restore finished", op)
}

func (handler *ApiHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	maxDepth := 0
	if raw := r.URL.Query().Get("max_depth"); raw != "" {
		maxDepth, err = strconv.Atoi(raw)
		if err != nil {
			badRequest(w, errors.Wrap(err, "invalid max_depth"))
			return
		}
	}

	files, err := handler.mn.ListFiles(r.Context(), profileID, r.URL.Query().Get("path"), maxDepth)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "files", files)
}

func (handler *ApiHandler) History(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	ops, err := handler.mn.History(r.Context(), profileID)
	if err != nil {
		serverError(w, err)
		return
	}

	ok(w, "operations", ops)
}

func (handler *ApiHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	removed, err := handler.mn.ClearHistory(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}

	ok(w, "history cleared", map[string]int{"removed": removed})
}

func (handler *ApiHandler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	var params types.SetScheduleParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, err)
		return
	}
	params.ProfileID = profileID

	sched, err := handler.mn.SetSchedule(r.Context(), params)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "schedule set", sched)
}

func (handler *ApiHandler) RemoveSchedule(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	if err := handler.mn.RemoveSchedule(r.Context(), profileID); err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "schedule removed", nil)
}

func (handler *ApiHandler) ScheduleStatus(w http.ResponseWriter, r *http.Request) {
	profileID, err := profileIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	sched, err := handler.mn.ScheduleStatus(r.Context(), profileID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	ok(w, "schedule", sched)
}

func (handler *ApiHandler) SyncLogs(w http.ResponseWriter, r *http.Request) {
	count, err := handler.mn.SyncLogs(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}

	ok(w, "logs synced", map[string]int{"new_operations": count})
}

// Events streams backup lifecycle events until the client disconnects.
func (handler *ApiHandler) Events(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profile_id")
	if profileID == "" {
		profileID = eventbus.AllProfiles
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	ch, cancel := handler.mn.Subscribe(profileID)
	defer cancel()

	for {
		select {
		case ev := <-ch:
			if err := writeSSELine(w, ev); err != nil {
				logger.Warn("failed to stream event", zap.Error(err))
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (handler *ApiHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := handler.mn.Status(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}

	ok(w, "status", status)
}

func profileIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "profile_id"))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "invalid profile id")
	}
	return id, nil
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrProfileNotFound) {
		notFound(w, err)
		return
	}
	serverError(w, err)
}
