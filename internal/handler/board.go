package handler

import (
	"errors"
	"net/http"
	"time"

	datastar "github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/predictions/internal/domain"
	"github.com/msomdec/predictions/internal/service"
	"github.com/msomdec/predictions/internal/view"
)

// BoardHandler serves the read-only web board.
type BoardHandler struct {
	db        domain.Database
	contracts *service.ContractLedger
	loc       *time.Location
	now       func() time.Time
}

// NewBoardHandler creates a new BoardHandler rendering times in loc.
func NewBoardHandler(db domain.Database, contracts *service.ContractLedger, loc *time.Location, now func() time.Time) *BoardHandler {
	return &BoardHandler{db: db, contracts: contracts, loc: loc, now: now}
}

// HandleBoard lists active, resolved and cancelled contracts.
func (h *BoardHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	sections := []view.BoardSection{
		{Title: string(domain.ContractFilterActive)},
		{Title: string(domain.ContractFilterResolved)},
		{Title: string(domain.ContractFilterCancelled)},
	}
	err := service.WithinUnitOfWork(r.Context(), h.db, func(uow domain.UnitOfWork) error {
		for i := range sections {
			names, err := h.contracts.List(r.Context(), uow, domain.ContractFilter(sections[i].Title))
			if err != nil {
				return err
			}
			sections[i].Names = names
		}
		return nil
	})
	if err != nil {
		LoggerFromContext(r.Context()).Error("list contracts for board", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view.BoardPage(sections).Render(r.Context(), w)
}

// HandleContract renders one contract with its predictions and scoreboard.
func (h *BoardHandler) HandleContract(w http.ResponseWriter, r *http.Request) {
	v, ok := h.show(w, r)
	if !ok {
		return
	}
	view.ContractPage(v, h.loc, h.now()).Render(r.Context(), w)
}

// HandleScores streams a refreshed scoreboard fragment via SSE.
func (h *BoardHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	v, ok := h.show(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(
		view.ScoresFragment(v.Scores),
		datastar.WithSelectorID(view.ScoresID),
		datastar.WithModeInner(),
	); err != nil {
		LoggerFromContext(r.Context()).Warn("patch scores", "error", err)
	}
}

// show loads the contract named in the path, writing the error response
// itself when it returns false.
func (h *BoardHandler) show(w http.ResponseWriter, r *http.Request) (*service.ContractView, bool) {
	name := r.PathValue("name")

	var v *service.ContractView
	err := service.WithinUnitOfWork(r.Context(), h.db, func(uow domain.UnitOfWork) error {
		var err error
		v, err = h.contracts.Show(r.Context(), uow, name)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownContract) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return nil, false
		}
		LoggerFromContext(r.Context()).Error("show contract", "error", err, "contract", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return v, true
}
