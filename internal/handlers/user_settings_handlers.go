package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/valeriaulyamaeva/business-tracker/internal/appdata"
	"github.com/valeriaulyamaeva/business-tracker/internal/remote"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

const maxProfileImageSize = 5 << 20

func GetSettingsHandler(store *appdata.Store, adapter *remote.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := adapter.FetchSettings(r.Context(), store.UserID())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

func UpdateSettingsHandler(store *appdata.Store, adapter *remote.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings models.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid input data")
			return
		}
		if err := adapter.SaveSettings(r.Context(), store.UserID(), &settings); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

func GetProfileImageHandler(store *appdata.Store, adapter *remote.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blob, err := adapter.DownloadProfileImage(r.Context(), store.UserID())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		w.Header().Set("Content-Type", blob.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(blob.Data)
	}
}

// UploadProfileImageHandler stores the raw request body as the profile image.
func UploadProfileImageHandler(store *appdata.Store, adapter *remote.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxProfileImageSize+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read image")
			return
		}
		if len(data) > maxProfileImageSize {
			writeError(w, http.StatusRequestEntityTooLarge, "Image is too large")
			return
		}
		if err := adapter.UploadProfileImage(r.Context(), store.UserID(), r.Header.Get("Content-Type"), data); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Profile image updated"})
	}
}
