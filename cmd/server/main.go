package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mbetancur/basinview/internal/api/handlers"
	"github.com/mbetancur/basinview/internal/api/middleware"
	"github.com/mbetancur/basinview/internal/config"
	"github.com/mbetancur/basinview/internal/crypto"
	"github.com/mbetancur/basinview/internal/database"
	"github.com/mbetancur/basinview/internal/debug"
	"github.com/mbetancur/basinview/internal/delineate"
	"github.com/mbetancur/basinview/internal/geo"
	"github.com/mbetancur/basinview/internal/gpkg"
	"github.com/mbetancur/basinview/internal/logger"
	"github.com/mbetancur/basinview/internal/web"
	"github.com/mbetancur/basinview/internal/websocket"
	"github.com/mbetancur/basinview/pkg/types"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open database
	logger.Infof("Opening database: %s", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// Dev-only: prune run history pointing at deleted artifacts
	if os.Getenv("BASINVIEW_DEV_PRUNE_RUNS") == "1" || os.Getenv("BASINVIEW_DEV_PRUNE_RUNS") == "true" {
		logger.Warnf("BASINVIEW_DEV_PRUNE_RUNS enabled - pruning runs table")
		if err := debug.PruneRuns(db.DB); err != nil {
			logger.Warnf("Failed to prune runs: %v", err)
		}
	}

	// Initialize JWT manager
	logger.Infof("Initializing JWT manager...")
	jwtManager, err := crypto.NewJWTManager(cfg.MasterSecret)
	if err != nil {
		logger.Errorf("Failed to create JWT manager: %v", err)
		os.Exit(1)
	}

	// Session manager over the external delineator and the GeoPackage reader.
	// The hub forwards map clicks into the session's selector, closing the
	// render -> click -> select -> invoke loop.
	var (
		manager *delineate.Manager
		hub     *websocket.Hub
	)
	hub = websocket.NewHub(func(sessionID string, lat, lon float64) {
		sess := manager.GetOrCreate(sessionID)
		if sess.Selector.Select(geo.Coordinate{Lat: lat, Lon: lon}) {
			hub.EmitToSession(sessionID, types.ClickEvent{
				Type: types.EventClickRecorded,
				Lat:  lat,
				Lon:  lon,
			})
		}
	})
	manager = delineate.NewManager(delineate.Deps{
		Delineator: &delineate.ExecDelineator{
			Command: cfg.DelineatorCmd,
			Timeout: cfg.DelineatorTimeout,
		},
		Opener: func(path string) (delineate.LayerReader, error) {
			return gpkg.Open(path)
		},
		Emitter:  hub,
		Recorder: db,
	})

	// Create Gin router
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	// Logging middleware
	router.Use(middleware.LoggingMiddleware())

	// Map page
	router.GET("/", web.Index)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(manager, jwtManager, hub)
	runHandler := handlers.NewRunHandler(manager, db)
	sceneHandler := handlers.NewSceneHandler(manager)
	exportHandler := handlers.NewExportHandler(manager)

	// Public routes (no auth required)
	v1 := router.Group("/v1")
	{
		v1.POST("/sessions", sessionHandler.CreateSession)

		v1.POST("/version", func(c *gin.Context) {
			c.JSON(200, gin.H{"version": "1.0.0"})
		})
	}

	// Protected routes (session token required)
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager))
	{
		// Session state
		protected.GET("/session", sessionHandler.GetSession)
		protected.POST("/session/reset", sessionHandler.ResetSession)
		protected.POST("/session/click", sessionHandler.Click)
		protected.POST("/session/parameters", sessionHandler.UpdateParameters)

		// Runs
		protected.POST("/session/delineate", runHandler.Delineate)
		protected.GET("/session/run", runHandler.GetRun)
		protected.GET("/session/runs", runHandler.ListRuns)

		// Scene
		protected.GET("/session/scene", sceneHandler.GetScene)

		// Exports
		protected.GET("/session/export/gpkg", exportHandler.ExportGeoPackage)
		protected.GET("/session/export/geojson", exportHandler.ExportGeoJSON)

		// Updates channel
		protected.GET("/updates", hub.HandleUpdates)
	}

	// Start HTTP server
	logger.Infof("Basinview server starting on http://localhost%s", cfg.Addr)
	logger.Infof("Database: %s", cfg.DatabasePath)
	logger.Infof("Delineator: %v (timeout %s)", cfg.DelineatorCmd, cfg.DelineatorTimeout)

	if err := router.Run(cfg.Addr); err != nil {
		logger.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
