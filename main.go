package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/dan-homisak/Nexus/internal/models"
	"github.com/dan-homisak/Nexus/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// Create data directory
	dataDir := filepath.Join(".", "data")
	err := os.MkdirAll(dataDir, os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the database
	err = models.Connect(filepath.Join(dataDir, "gorm.db"))
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// "reconcile" recomputes all derived state and prints a summary, for
	// operators and as a backstop after manual data surgery. An optional
	// argument restricts the run to funding sources whose name matches
	// the glob pattern.
	if len(os.Args) > 1 && os.Args[1] == "reconcile" {
		pattern := ""
		if len(os.Args) > 2 {
			pattern = os.Args[2]
		}

		result, err := models.ReconcileMatching(models.DB, pattern)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(result)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		return
	}

	r, err := router.Config()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	router.AttachRoutes(r.Group("/"))

	if err := r.Run(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
