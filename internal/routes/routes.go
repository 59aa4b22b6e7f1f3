package routes

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/valeriaulyamaeva/business-tracker/internal/analytics"
	"github.com/valeriaulyamaeva/business-tracker/internal/appdata"
	"github.com/valeriaulyamaeva/business-tracker/internal/handlers"
	"github.com/valeriaulyamaeva/business-tracker/internal/remote"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

type Deps struct {
	Store    *appdata.Store
	Remote   *remote.Adapter
	Sessions handlers.Sessions
	Calendar analytics.Calendar
	Now      func() time.Time
}

// SetupRouter builds the /api router. Every route requires the bearer token
// of the signed-in user.
func SetupRouter(d Deps) *mux.Router {
	if d.Now == nil {
		d.Now = time.Now
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(handlers.RequireSession(d.Sessions, d.Store))

	for _, kind := range models.Kinds {
		path := "/" + string(kind)
		api.HandleFunc(path, handlers.ListRecordsHandler(d.Store, kind)).Methods("GET")
		api.HandleFunc(path, handlers.CreateRecordHandler(d.Store, kind, d.Calendar, d.Now)).Methods("POST")
		api.HandleFunc(path+"/{id}", handlers.DeleteRecordHandler(d.Store, kind)).Methods("DELETE")
	}

	api.HandleFunc("/activity/recent", handlers.RecentActivityHandler(d.Store)).Methods("GET")
	api.HandleFunc("/activity", handlers.ActivityHandler(d.Store, d.Calendar, d.Now)).Methods("GET")

	api.HandleFunc("/export.csv", handlers.ExportCSVHandler(d.Store, d.Calendar, d.Now)).Methods("GET")
	api.HandleFunc("/export.json", handlers.ExportJSONHandler(d.Store, d.Calendar, d.Now)).Methods("GET")
	api.HandleFunc("/export.pdf", handlers.ExportPDFHandler(d.Store, d.Remote, d.Calendar, d.Now)).Methods("GET")

	api.HandleFunc("/settings", handlers.GetSettingsHandler(d.Store, d.Remote)).Methods("GET")
	api.HandleFunc("/settings", handlers.UpdateSettingsHandler(d.Store, d.Remote)).Methods("PUT")
	api.HandleFunc("/profile/image", handlers.GetProfileImageHandler(d.Store, d.Remote)).Methods("GET")
	api.HandleFunc("/profile/image", handlers.UploadProfileImageHandler(d.Store, d.Remote)).Methods("PUT")

	return r
}
