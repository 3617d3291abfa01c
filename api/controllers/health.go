package controllers

import (
	"net/http"

	"github.com/arscode/arscode-backend/api/responses"
	"github.com/arscode/arscode-backend/pkg/db"
	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
	"github.com/arscode/arscode-backend/pkg/logger"
	"github.com/arscode/arscode-backend/pkg/redis"
)

// Health reports readiness of the datasource and cache.
func Health(dbP db.Pinger, redisClient *redis.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
			checks["database"] = "ok"
		}

		if redisClient != nil {
			if err := redisClient.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
			checks["redis"] = "ok"
		}

		responses.WriteSuccess(w, checks)
	}
}
