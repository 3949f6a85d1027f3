package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/spendsense/spendsense/internal/auth"
	authhttp "github.com/spendsense/spendsense/internal/http/auth"
	grouphttp "github.com/spendsense/spendsense/internal/http/group"
	historyhttp "github.com/spendsense/spendsense/internal/http/history"
	posthttp "github.com/spendsense/spendsense/internal/http/post"
	savingshttp "github.com/spendsense/spendsense/internal/http/savings"
	similarityhttp "github.com/spendsense/spendsense/internal/http/similarity"
)

func New(
	tokens *auth.TokenManager,
	authV1 *authhttp.Handler,
	groupsV1 *grouphttp.Handler,
	postsV1 *posthttp.Handler,
	savingsV1 *savingshttp.Handler,
	historyV1 *historyhttp.Handler,
	similarityV1 *similarityhttp.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens))

			r.Route("/account", authV1.AccountRoutes)
			r.Route("/groups", func(r chi.Router) {
				groupsV1.Routes(r)
				r.Route("/{id}/posts", postsV1.GroupRoutes)
			})
			r.Route("/posts", postsV1.Routes)
			r.Route("/savings", savingsV1.Routes)
			r.Route("/history", historyV1.Routes)
			r.Route("/similarity", similarityV1.Routes)
		})
	})

	return router
}
