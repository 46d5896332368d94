// Package translateword implements the dictionary word lookup. Words found
// in the bundled dictionary are answered locally; everything else falls
// back to a single upstream Behdini call. No quota is charged either way.
package translateword

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
)

// Request carries the word to look up.
type Request struct {
	Word string `json:"word" validate:"required"`
}

// Service is the unmetered word translation of the translate service.
type Service interface {
	TranslateWord(ctx context.Context, word string) (string, error)
}

// Dictionary maps category -> word -> translation, matching the layout of
// the bundled dictionary file.
type Dictionary map[string]map[string]string

// LoadDictionary reads the dictionary file; a missing path yields an empty
// dictionary so the endpoint degrades to upstream-only lookups.
func LoadDictionary(path string) (Dictionary, error) {
	if path == "" {
		return Dictionary{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dict Dictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, err
	}
	return dict, nil
}

// Lookup searches every category for the word.
func (d Dictionary) Lookup(word string) (string, bool) {
	for _, category := range d {
		if translation, ok := category[word]; ok {
			return translation, true
		}
	}
	return "", false
}

type Handler struct {
	log      *slog.Logger
	service  Service
	dict     Dictionary
	validate *validator.Validate
}

func New(log *slog.Logger, service Service, dict Dictionary) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		dict:     dict,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.translateword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("هەمی زانیاری پێتڤینە", response.CodeValidation))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if translation, ok := h.dict.Lookup(req.Word); ok {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"translation": translation,
		}))
		return
	}

	translation, err := h.service.TranslateWord(r.Context(), req.Word)
	if err != nil {
		log.Error("word translation failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("وەرگێڕان سەرنەکەفت", response.CodeUpstream))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"translation": translation,
	}))
}
