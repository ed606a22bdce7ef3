package app

import (
	"time"

	"github.com/linkup/backend/internal/auth"
	"github.com/linkup/backend/internal/config"
	"github.com/linkup/backend/internal/db"
	"github.com/linkup/backend/internal/handlers"
	"github.com/linkup/backend/internal/middleware"
	"github.com/linkup/backend/internal/notify"
	"github.com/linkup/backend/internal/repositories"
	"github.com/linkup/backend/internal/social"
)

// buildDependencies wires together concrete implementations used by the
// HTTP handlers. blobs and dispatcher may be nil when the respective
// backing services are not configured.
func buildDependencies(pool db.Pool, cfg config.Config, blobs social.BlobStore, dispatcher *notify.Dispatcher) handlers.Dependencies {
	users := repositories.NewPostgresUserRepository(pool)
	graphRepo := repositories.NewPostgresGraphRepository(pool)
	postRepo := repositories.NewPostgresPostRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	sessions := auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, sessionStore)

	graph := social.NewGraph(graphRepo)
	accounts := social.NewAccounts(users, graph, sessions, blobs, cfg.BootstrapFriendID, "")

	var messageNotifier social.Notifier
	var friendNotifier handlers.FriendNotifier
	if dispatcher != nil {
		messageNotifier = dispatcher
		friendNotifier = dispatcher
	}

	return handlers.Dependencies{
		Accounts: accounts,
		Sessions: sessions,
		Verifier: sessions,
		Graph:    graph,
		Messages: social.NewMessenger(graphRepo, messageNotifier),
		Posts:    social.NewPosts(postRepo, blobs),
		Profiles: social.NewProfiles(users, cfg.ProfileCacheTTL),
		Notifier: friendNotifier,
		Limiter:  middleware.NewIPRateLimiter(cfg.SignupRateLimit, time.Minute, cfg.SignupRateBurst, 10*time.Minute),
	}
}
