// internal/app/features/members/import.go
package members

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/minglehub/internal/app/features/shared"
	identitystore "github.com/dalemusser/minglehub/internal/app/store/identities"
	membershipstore "github.com/dalemusser/minglehub/internal/app/store/memberships"
	"github.com/dalemusser/minglehub/internal/app/system/sheetutil"
	"github.com/dalemusser/minglehub/internal/app/system/timeouts"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"go.uber.org/zap"
)

// importSummary reports what happened to each row of a spreadsheet import.
type importSummary struct {
	Total         int      `json:"total"`
	Added         int      `json:"added"`
	AlreadyMember int      `json:"already_member"`
	Failed        int      `json:"failed"`
	Errors        []string `json:"errors,omitempty"`
}

// maxImportErrors caps how many per-row error strings the summary carries.
const maxImportErrors = 10

// ServeImport handles POST /events/{eventID}/members/import. The uploaded
// CSV/XLSX rows are processed strictly in order, one resolve-and-add at a
// time: per-row AlreadyMember is a counted no-op, per-row resolution
// failures are counted and reported, and the import keeps going. Profile
// embedding runs behind the ledger's post-add hook and can never fail a row.
func (h *Handler) ServeImport(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, sheetutil.MaxUploadSize)
	if err := r.ParseMultipartForm(sheetutil.MaxUploadSize); err != nil {
		shared.Error(w, http.StatusBadRequest, "upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		shared.Error(w, http.StatusBadRequest, `multipart field "file" is required`)
		return
	}
	defer file.Close()

	rows, err := sheetutil.ParseMembers(header.Filename, file)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(rows) == 0 {
		shared.Error(w, http.StatusBadRequest, "spreadsheet has no member rows")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch)
	defer cancel()

	summary := importSummary{Total: len(rows)}
	for i, row := range rows {
		if err := h.importRow(ctx, ev, row); err != nil {
			if errors.Is(err, membershipstore.ErrAlreadyMember) {
				summary.AlreadyMember++
				continue
			}
			summary.Failed++
			if len(summary.Errors) < maxImportErrors {
				summary.Errors = append(summary.Errors, rowError(i, err))
			}
			h.Log.Warn("import row failed",
				zap.String("event_id", ev.ID.Hex()),
				zap.Int("row", i+1),
				zap.Error(err))
			continue
		}
		summary.Added++
	}

	shared.JSON(w, http.StatusOK, summary)
}

func (h *Handler) importRow(ctx context.Context, ev *models.Event, row sheetutil.MemberRow) error {
	ident, _, err := h.Identities.Resolve(ctx, identitystore.PersonInput{
		Name:        row.Name,
		FounderName: row.FounderName,
		Email:       row.Email,
		Phone:       row.Phone,
		Company:     row.Company,
		Bio:         row.Bio,
		Website:     row.Website,
		RoleTag:     row.RoleTag,
	})
	if err != nil {
		return err
	}
	_, err = h.Memberships.Add(ctx, ev.ID, ev.OrganizerID, ident, models.SourceSpreadsheet)
	return err
}

func rowError(i int, err error) string {
	return "row " + strconv.Itoa(i+1) + ": " + err.Error()
}
