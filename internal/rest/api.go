package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gamma-omg/tenwords/internal/fn"
	"github.com/gamma-omg/tenwords/internal/model"
	"github.com/gamma-omg/tenwords/internal/pkg/httpx"
	"github.com/gamma-omg/tenwords/internal/pkg/middleware"
	"github.com/gamma-omg/tenwords/internal/pkg/serr"
	"github.com/gamma-omg/tenwords/internal/service"
)

// maxBatchBodyBytes bounds a batch request; ten words fit many times over.
const maxBatchBodyBytes = 16 << 10

var errBadQuery = errors.New("bad query parameter")

type wordsService interface {
	Validate(ctx context.Context, userID string, raw []any) (service.ValidateResponse, error)
	Submit(ctx context.Context, userID string, raw []any) (service.SubmitResponse, error)
	ListWords(ctx context.Context, userID string, q model.ListQuery) ([]model.Word, error)
}

type routes interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

type API struct {
	srv wordsService
}

func NewAPI(srv wordsService) *API {
	return &API{srv: srv}
}

func (api *API) Register(r routes) {
	r.HandleFunc("POST /words/validate", api.handleValidate)
	r.HandleFunc("POST /words", api.handleSubmit)
	r.HandleFunc("GET /words", api.handleList)
}

type batchRequest struct {
	Words []any `json:"words"`
}

func readBatch(w http.ResponseWriter, r *http.Request) (batchRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBatchBodyBytes)

	var req batchRequest
	err := httpx.ReadJSON(r, &req)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, serr.NewServiceError(err, http.StatusRequestEntityTooLarge,
				"request body exceeds %d bytes", tooLarge.Limit).WithKind(serr.KindBadRequest)
		}
		return req, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body")
	}

	return req, nil
}

type conflictsResponse struct {
	Stored  []string `json:"stored"`
	InBatch []string `json:"in_batch"`
}

type validateResponse struct {
	OK        bool              `json:"ok"`
	Conflicts conflictsResponse `json:"conflicts"`
}

func (api *API) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, err := readBatch(w, r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp, err := api.srv.Validate(r.Context(), middleware.UserIDFromContext(r.Context()), req.Words)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, validateResponse{
		OK: resp.OK,
		Conflicts: conflictsResponse{
			Stored:  resp.Conflicts.Stored,
			InBatch: resp.Conflicts.InBatch,
		},
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type submitResponse struct {
	InsertedCount int `json:"inserted_count"`
}

func (api *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := readBatch(w, r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp, err := api.srv.Submit(r.Context(), middleware.UserIDFromContext(r.Context()), req.Words)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusCreated, submitResponse{InsertedCount: resp.InsertedCount})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type listResponse struct {
	Words []wordResponse `json:"words"`
}

type wordResponse struct {
	ID      string    `json:"id"`
	Owner   string    `json:"owner"`
	Display string    `json:"display"`
	Key     string    `json:"key"`
	AddedAt time.Time `json:"added_at"`
}

func (api *API) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := listQueryFromRequest(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	words, err := api.srv.ListWords(r.Context(), middleware.UserIDFromContext(r.Context()), q)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, listResponse{
		Words: fn.Map(words, func(word model.Word) wordResponse {
			return wordResponse{
				ID:      word.ID,
				Owner:   word.Owner,
				Display: word.Display,
				Key:     word.Key,
				AddedAt: word.AddedAt,
			}
		}),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func listQueryFromRequest(r *http.Request) (model.ListQuery, error) {
	params := r.URL.Query()
	q := model.ListQuery{
		Search: params.Get("q"),
		Sort:   model.SortField(params.Get("sort")),
		Order:  model.SortOrder(params.Get("order")),
	}

	switch scope := params.Get("scope"); scope {
	case "", "mine":
	case "all":
		q.All = true
	default:
		return q, badQuery("scope", scope)
	}

	switch q.Sort {
	case "", model.SortAdded, model.SortAlpha:
	default:
		return q, badQuery("sort", string(q.Sort))
	}

	switch q.Order {
	case "", model.OrderAsc, model.OrderDesc:
	default:
		return q, badQuery("order", string(q.Order))
	}

	if limit := params.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return q, badQuery("limit", limit)
		}
		q.Limit = n
	}

	return q, nil
}

func badQuery(param, value string) error {
	se := serr.NewServiceError(errBadQuery, http.StatusBadRequest, "invalid %s parameter: %q", param, value)
	se.Fields["param"] = param
	return se
}
