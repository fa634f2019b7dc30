package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthStatus is the per-dependency body of GET /healthz.
type HealthStatus struct {
	Status string `json:"status" enum:"ok,error"`
}

// HealthResponse maps dependency names to their status.
type HealthResponse map[string]HealthStatus

type teamIDPath struct {
	TeamID string `path:"teamId"`
}

type openAPIOp struct {
	method, path, summary, description string
	req                                any
	resp                               any
	status                             int
	contentType                        string
	errors                             []int
}

var openAPIOps = []openAPIOp{
	{
		method: http.MethodGet, path: "/healthz",
		summary:     "Health check",
		description: "Returns the health status of backend dependencies.",
		resp:        HealthResponse{}, status: http.StatusOK,
	},
	{
		method: http.MethodPost, path: "/register",
		summary:     "Register a team",
		description: "Creates a team and assigns the start waypoint. Team names are unique case-insensitively.",
		req:         RegisterRequest{},
		resp:        RegisterResponse{}, status: http.StatusCreated,
		errors: []int{http.StatusBadRequest, http.StatusConflict},
	},
	{
		method: http.MethodPost, path: "/api/get-team-id",
		summary:     "Recover team id",
		description: "Looks a team up by name, case-insensitively.",
		req:         TeamIDRequest{},
		resp:        TeamIDResponse{}, status: http.StatusOK,
		errors: []int{http.StatusBadRequest, http.StatusNotFound},
	},
	{
		method: http.MethodPost, path: "/scan",
		summary:     "Submit a scan",
		description: "Validates a QR scan against device binding, time limit, route sequence and GPS proximity.",
		req:         ScanRequest{},
		resp:        ScanResponse{}, status: http.StatusOK,
		errors: []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	},
	{
		method: http.MethodGet, path: "/team-status/{teamId}",
		summary:     "Team status",
		description: "Current clue, assigned waypoint and qualification of a team.",
		req:         teamIDPath{},
		resp:        TeamStatusResponse{}, status: http.StatusOK,
		errors: []int{http.StatusNotFound},
	},
	{
		method: http.MethodGet, path: "/teams/{teamId}/events",
		summary:     "Team event stream",
		description: "Server-Sent Events stream of the team's scan outcomes.",
		req:         teamIDPath{},
		status:      http.StatusOK, contentType: "text/event-stream",
		errors: []int{http.StatusNotFound},
	},
	{
		method: http.MethodGet, path: "/leaderboard",
		summary:     "Leaderboard",
		description: "Finished teams by rank, then teams still playing by score.",
		resp:        []LeaderboardItem{}, status: http.StatusOK,
	},
	{
		method: http.MethodGet, path: "/public/scans",
		summary:     "Recent scans",
		description: "The latest scans for display boards.",
		resp:        []PublicScanItem{}, status: http.StatusOK,
	},
	{
		method: http.MethodGet, path: "/ws/feed",
		summary:     "Live scan feed",
		description: "Upgrades to a WebSocket connection that streams every scan and finish event.",
		status:      http.StatusSwitchingProtocols, contentType: "text/plain",
	},
	{
		method: http.MethodPost, path: "/auth/login",
		summary:     "Admin login",
		description: "Exchanges the admin password for a bearer token.",
		req:         AdminLoginRequest{},
		resp:        AdminLoginResponse{}, status: http.StatusOK,
		errors: []int{http.StatusBadRequest, http.StatusUnauthorized},
	},
	{
		method: http.MethodPost, path: "/auth/logout",
		summary:     "Admin logout",
		description: "Revokes the bearer token. Requires Bearer token.",
		resp:        MessageResponse{}, status: http.StatusOK,
		errors: []int{http.StatusUnauthorized},
	},
	{
		method: http.MethodGet, path: "/admin/teams",
		summary:     "List teams",
		description: "All teams, with time limits applied. Requires Bearer token.",
		resp:        []AdminTeamItem{}, status: http.StatusOK,
		errors: []int{http.StatusUnauthorized},
	},
	{
		method: http.MethodGet, path: "/admin/scans",
		summary:     "Scan log",
		description: "Every scan, newest first. Requires Bearer token.",
		resp:        []AdminScanItem{}, status: http.StatusOK,
		errors: []int{http.StatusUnauthorized},
	},
	{
		method: http.MethodGet, path: "/admin/locations",
		summary:     "List locations",
		description: "Every waypoint with its clue and coordinates. Requires Bearer token.",
		resp:        []AdminLocationItem{}, status: http.StatusOK,
		errors: []int{http.StatusUnauthorized},
	},
	{
		method: http.MethodPut, path: "/admin/location",
		summary:     "Update location coordinates",
		description: "Moves a waypoint's target point. Requires Bearer token.",
		req:         AdminLocationRequest{},
		resp:        MessageResponse{}, status: http.StatusOK,
		errors: []int{http.StatusBadRequest, http.StatusNotFound, http.StatusUnauthorized},
	},
	{
		method: http.MethodPost, path: "/admin/disqualify",
		summary:     "Disqualify team",
		description: "Disqualifies a team, or requalifies it when status is false. Requires Bearer token.",
		req:         AdminDisqualifyRequest{},
		resp:        MessageResponse{}, status: http.StatusOK,
		errors: []int{http.StatusNotFound, http.StatusUnauthorized},
	},
	{
		method: http.MethodPut, path: "/admin/team/location",
		summary:     "Override team location",
		description: "Assigns a team a waypoint or the finish sentinel. Requires Bearer token.",
		req:         AdminTeamLocationRequest{},
		resp:        MessageResponse{}, status: http.StatusOK,
		errors: []int{http.StatusBadRequest, http.StatusNotFound, http.StatusUnauthorized},
	},
	{
		method: http.MethodPost, path: "/admin/team/progress",
		summary:     "Override team progress",
		description: "Resets a team to the start or completes it immediately. Requires Bearer token.",
		req:         AdminProgressRequest{},
		resp:        ScanResponse{}, status: http.StatusOK,
		errors: []int{http.StatusBadRequest, http.StatusNotFound, http.StatusUnauthorized},
	},
	{
		method: http.MethodDelete, path: "/admin/team/{teamId}",
		summary:     "Delete team",
		description: "Deletes a team and its scans. Requires Bearer token.",
		req:         teamIDPath{},
		resp:        MessageResponse{}, status: http.StatusOK,
		errors: []int{http.StatusNotFound, http.StatusUnauthorized},
	},
	{
		method: http.MethodGet, path: "/admin/bans",
		summary:     "List banned devices",
		description: "Requires Bearer token.",
		resp:        []AdminBanItem{}, status: http.StatusOK,
		errors: []int{http.StatusUnauthorized},
	},
	{
		method: http.MethodPost, path: "/admin/ban",
		summary:     "Ban device",
		description: "Rejects every future scan from a device. Requires Bearer token.",
		req:         AdminBanRequest{},
		resp:        MessageResponse{}, status: http.StatusCreated,
		errors: []int{http.StatusBadRequest, http.StatusUnauthorized},
	},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Treasure Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Scan verification, progression and ranking for GPS treasure hunts.")

	for _, op := range openAPIOps {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		oc.SetDescription(op.description)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		if op.contentType != "" {
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(op.status), openapi.WithContentType(op.contentType))
		} else {
			oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(op.status))
		}
		for _, status := range op.errors {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
