package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/competitions", handler.ListCompetitions)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/standings", handler.ListStandings)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/matches", handler.ListMatchesByCompetition)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/aggregates", handler.ListAggregatesByCompetition)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/voting", handler.GetVotingStatus)
	mux.HandleFunc("GET /v1/players/{playerID}/aggregate", handler.GetPlayerAggregate)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/matches/{matchID}/votes", RequireAuth(verifier, http.HandlerFunc(handler.CastVote)))
	mux.Handle("GET /v1/matches/{matchID}/votes/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyBallot)))
	mux.Handle("POST /v1/matches/results", RequireAuth(verifier, http.HandlerFunc(handler.RecordMatchResult)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/voting-sweep", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunVotingSweepJob)))
	mux.Handle("POST /v1/internal/jobs/rebuild-aggregates", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRebuildAggregatesJob)))
}
