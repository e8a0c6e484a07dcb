package controllers

import (
	"net/http"

	"github.com/rednammadhavi/laptopcare-erp/api/responses"
	"github.com/rednammadhavi/laptopcare-erp/pkg/config"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db"
	pkgerrors "github.com/rednammadhavi/laptopcare-erp/pkg/errors"
	"github.com/rednammadhavi/laptopcare-erp/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LaptopCare-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness; it fails while the datasource is unreachable.
func HealthReady(cfg *config.Config, pinger db.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LaptopCare-Env", cfg.App.Env)

		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
