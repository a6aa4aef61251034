package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/pokedex/internal/api/handler"
	"github.com/timmy/pokedex/internal/api/middleware"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/service"
)

// Services are the dependencies of the HTTP API.
type Services struct {
	Cache      *service.ListCache
	Details    *service.DetailService
	Components *service.ComponentService
	// Preloader is optional
	Preloader handler.Preloader
	// Attempts is optional; the telemetry route is registered only when set
	Attempts handler.AttemptLister
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc Services, cors middleware.CORSConfig, mode string, log *logger.Logger) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler(svc.Cache, svc.Components)
	pokemonHandler := handler.NewPokemonHandler(svc.Cache, svc.Details, svc.Preloader)
	remoteHandler := handler.NewRemoteHandler(svc.Components)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Grid list cache
		v1.GET("/pokemon", pokemonHandler.List)
		v1.POST("/pokemon/next", pokemonHandler.Next)
		v1.POST("/pokemon/reset", pokemonHandler.Reset)

		// Detail view
		v1.GET("/pokemon/:id", pokemonHandler.Get)
		v1.POST("/pokemon/:id/open", pokemonHandler.Open)
		v1.DELETE("/selection", pokemonHandler.Close)

		// Federation
		v1.GET("/remotes", remoteHandler.List)
		v1.GET("/remotes/:name/components/:component", remoteHandler.LoadComponent)

		if svc.Attempts != nil {
			v1.GET("/telemetry", handler.NewTelemetryHandler(svc.Attempts).List)
		}
	}

	return r
}
