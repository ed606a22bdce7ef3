package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Routes
// below the auth endpoints require a bearer access token.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Accounts: deps.Accounts, Sessions: deps.Sessions, Limiter: deps.Limiter}
	users := UserHandler{Accounts: deps.Accounts, Profiles: deps.Profiles}
	friends := FriendHandler{Graph: deps.Graph, Profiles: deps.Profiles, Notifier: deps.Notifier}
	messages := MessageHandler{Messages: deps.Messages}
	posts := PostHandler{Posts: deps.Posts}

	authed := RequireAuth(deps.Verifier)

	mux.HandleFunc("GET /healthz", health.Handle)
	mux.HandleFunc("POST /api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("POST /api/v1/auth/login", auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", auth.Refresh)

	mux.Handle("GET /api/v1/users/me", authed(http.HandlerFunc(users.Me)))
	mux.Handle("PATCH /api/v1/users/me", authed(http.HandlerFunc(users.Update)))
	mux.Handle("GET /api/v1/users/{username}", authed(http.HandlerFunc(users.ByUsername)))
	mux.Handle("POST /api/v1/friends/request", authed(http.HandlerFunc(friends.Request)))
	mux.Handle("POST /api/v1/friends/accept", authed(http.HandlerFunc(friends.Accept)))
	mux.Handle("POST /api/v1/messages/{peer}", authed(http.HandlerFunc(messages.Send)))
	mux.Handle("GET /api/v1/messages/{peer}", authed(http.HandlerFunc(messages.List)))
	mux.Handle("GET /api/v1/posts", authed(http.HandlerFunc(posts.List)))
	mux.Handle("POST /api/v1/posts", authed(http.HandlerFunc(posts.Create)))
	mux.Handle("POST /api/v1/posts/{id}/engage", authed(http.HandlerFunc(posts.Engage)))
	mux.Handle("DELETE /api/v1/posts/{id}", authed(http.HandlerFunc(posts.Delete)))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts AccountService
	Sessions SessionManager
	Verifier SessionVerifier
	Graph    GraphService
	Messages MessageService
	Posts    PostService
	Profiles ProfileService
	Notifier FriendNotifier
	Limiter  RateLimiter
}
