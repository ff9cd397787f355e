package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/internal/spreadsheet"
	"github.com/startin-app/startin/pkg/crypto"
	apperrors "github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/metrics"
)

var (
	universityColumns = []string{"universityName", "passkey"}
	inviteColumns     = []string{"passkey", "mailId", "name"}
)

// ImportResult summarises one bulk upload. RowErrors is keyed by the
// spreadsheet row number, counting the header as row 1.
type ImportResult struct {
	Added     int               `json:"added"`
	Updated   int               `json:"updated"`
	RowErrors map[string]string `json:"row_errors,omitempty"`
}

// InvitePasskey pairs an invite with the plaintext passkey it was created
// with, for echoing back to the admin after an upload.
type InvitePasskey struct {
	Invite  models.CompanyInvite `json:"invite"`
	Passkey string               `json:"passkey"`
}

// ImportService loads universities and company invites from admin-uploaded
// CSV or XLSX files.
type ImportService struct {
	db       *gorm.DB
	passkeys *PasskeyService
	hash     func(string) (string, error)
}

// NewImportService constructs an ImportService.
func NewImportService(db *gorm.DB, passkeys *PasskeyService) (*ImportService, error) {
	if db == nil {
		return nil, errors.New("import service: db is required")
	}
	if passkeys == nil {
		return nil, errors.New("import service: passkey service is required")
	}

	return &ImportService{
		db:       db,
		passkeys: passkeys,
		hash:     crypto.HashPassword,
	}, nil
}

// ImportUniversities upserts universities from a spreadsheet with
// universityName and passkey columns. Rows matching an existing name replace
// its passkey; the rest insert. Bad rows are reported without aborting the
// remainder.
func (s *ImportService) ImportUniversities(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	sheet, err := spreadsheet.Parse(filename, r, universityColumns)
	if err != nil {
		return nil, importError(err)
	}

	result := &ImportResult{RowErrors: map[string]string{}}
	for i, record := range sheet.Records {
		rowNumber := i + 2

		name := strings.TrimSpace(record["universityName"])
		passkey := strings.TrimSpace(record["passkey"])
		if name == "" || passkey == "" {
			result.RowErrors[rowKey(rowNumber)] = "universityName and passkey are required"
			metrics.ImportRows.WithLabelValues("university", "error").Inc()
			continue
		}

		hash, err := s.hash(passkey)
		if err != nil {
			return nil, fmt.Errorf("import service: hash passkey: %w", err)
		}

		var existing models.University
		err = s.db.WithContext(ctx).First(&existing, "name = ?", name).Error
		switch {
		case err == nil:
			if err := s.db.WithContext(ctx).Model(&existing).
				Update("passkey_hash", hash).Error; err != nil {
				return nil, fmt.Errorf("import service: update university: %w", err)
			}
			result.Updated++
			metrics.ImportRows.WithLabelValues("university", "updated").Inc()
		case errors.Is(err, gorm.ErrRecordNotFound):
			university := models.University{Name: name, PasskeyHash: hash}
			if err := s.db.WithContext(ctx).Create(&university).Error; err != nil {
				return nil, fmt.Errorf("import service: create university: %w", err)
			}
			result.Added++
			metrics.ImportRows.WithLabelValues("university", "added").Inc()
		default:
			return nil, fmt.Errorf("import service: lookup university: %w", err)
		}
	}

	if len(result.RowErrors) == 0 {
		result.RowErrors = nil
	}
	return result, nil
}

// ImportCompanyInvites upserts invites from a spreadsheet with passkey,
// mailId and name columns. A row whose passkey matches an existing invite
// updates that invite's email and name; otherwise a new invite is inserted.
// Plaintext passkeys of inserted rows are remembered for later listing.
func (s *ImportService) ImportCompanyInvites(ctx context.Context, filename string, r io.Reader) (*ImportResult, []InvitePasskey, error) {
	sheet, err := spreadsheet.Parse(filename, r, inviteColumns)
	if err != nil {
		return nil, nil, importError(err)
	}

	var invites []models.CompanyInvite
	if err := s.db.WithContext(ctx).Find(&invites).Error; err != nil {
		return nil, nil, fmt.Errorf("import service: list invites: %w", err)
	}

	result := &ImportResult{RowErrors: map[string]string{}}
	var created []InvitePasskey
	for i, record := range sheet.Records {
		rowNumber := i + 2

		passkey := strings.TrimSpace(record["passkey"])
		email := strings.ToLower(strings.TrimSpace(record["mailId"]))
		name := strings.TrimSpace(record["name"])

		if passkey == "" || email == "" || name == "" {
			result.RowErrors[rowKey(rowNumber)] = "passkey, mailId and name are required"
			metrics.ImportRows.WithLabelValues("invite", "error").Inc()
			continue
		}
		if _, err := mail.ParseAddress(email); err != nil {
			result.RowErrors[rowKey(rowNumber)] = "mailId is not a valid email address"
			metrics.ImportRows.WithLabelValues("invite", "error").Inc()
			continue
		}

		hashes := make([]string, len(invites))
		for j, invite := range invites {
			hashes[j] = invite.PasskeyHash
		}

		if idx := matchSecret(passkey, hashes); idx >= 0 {
			invite := &invites[idx]
			updates := map[string]any{"email": email, "name": name}
			if err := s.db.WithContext(ctx).Model(invite).Updates(updates).Error; err != nil {
				return nil, nil, fmt.Errorf("import service: update invite: %w", err)
			}
			invite.Email = email
			invite.Name = name
			result.Updated++
			metrics.ImportRows.WithLabelValues("invite", "updated").Inc()
			continue
		}

		hash, err := s.hash(passkey)
		if err != nil {
			return nil, nil, fmt.Errorf("import service: hash passkey: %w", err)
		}

		invite := models.CompanyInvite{PasskeyHash: hash, Email: email, Name: name}
		if err := s.db.WithContext(ctx).Create(&invite).Error; err != nil {
			return nil, nil, fmt.Errorf("import service: create invite: %w", err)
		}
		s.passkeys.RememberPlaintext(ctx, hash, passkey)

		invites = append(invites, invite)
		created = append(created, InvitePasskey{Invite: invite, Passkey: passkey})
		result.Added++
		metrics.ImportRows.WithLabelValues("invite", "added").Inc()
	}

	if len(result.RowErrors) == 0 {
		result.RowErrors = nil
	}
	return result, created, nil
}

func rowKey(rowNumber int) string {
	return fmt.Sprintf("Row %d", rowNumber)
}

func importError(err error) error {
	if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
		return apperrors.NewBadRequest("Only CSV and XLSX files are supported")
	}
	return apperrors.NewBadRequest(err.Error())
}
