package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fraudline/roomlink/internal/config"
	"github.com/fraudline/roomlink/internal/token"
)

type tokenRequest struct {
	Room     string `json:"room" binding:"required"`
	Identity string `json:"identity"`
	Name     string `json:"name"`
}

// SetupRouter builds the token service: a health probe and the
// credential-minting endpoint the client calls before joining a room.
func SetupRouter(cfg *config.Tokend) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/token", func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		identity := strings.TrimSpace(req.Identity)
		if identity == "" {
			identity = "user-" + uuid.NewString()[:8]
		}

		tok, err := token.Mint(cfg.APIKey, cfg.APISecret, req.Room, identity, req.Name, cfg.TokenTTL)
		if err != nil {
			log.Error().Str("module", "adapters.http").Err(err).Msg("mint token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mint token"})
			return
		}
		log.Info().Str("module", "adapters.http").
			Str("room", req.Room).Str("identity", identity).Msg("token issued")
		c.JSON(http.StatusOK, gin.H{"url": cfg.RoomURL, "token": tok})
	})

	return r
}
