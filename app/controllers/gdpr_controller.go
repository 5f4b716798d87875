package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/models"
	"github.com/saasbase-io/saasbase/app/repository"
	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
	"github.com/saasbase-io/saasbase/internal/pkg/objectstore"
	"github.com/saasbase-io/saasbase/internal/pkg/usercontext"
)

// GDPRController serves data export and erasure for the logged-in user.
type GDPRController struct {
	repos   *repository.Repositories
	archive objectstore.Storage // nil when the object store is disabled
}

func NewGDPRController(repos *repository.Repositories, archive objectstore.Storage) *GDPRController {
	return &GDPRController{repos: repos, archive: archive}
}

type exportDocument struct {
	ExportedAt    time.Time             `json:"exported_at"`
	User          *models.User          `json:"user"`
	Customer      *models.Customer      `json:"customer,omitempty"`
	Subscriptions []models.Subscription `json:"subscriptions,omitempty"`
	Invoices      []models.Invoice      `json:"invoices,omitempty"`
	Payments      []models.Payment      `json:"payments,omitempty"`
}

// HandleExport collects everything stored about the user and returns
// it as a JSON attachment. When S3 archiving is enabled a copy is
// stored for support; archive failures never fail the export.
func (gc *GDPRController) HandleExport(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := gc.repos.User.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.NotFound("user not found"))
		}
		return renderError(c, apperr.Database("user lookup failed", err))
	}

	doc := exportDocument{
		ExportedAt: time.Now().UTC(),
		User:       user,
	}

	customer, err := gc.repos.Customer.GetByUserID(userCtx.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return renderError(c, apperr.Database("customer lookup failed", err))
	}
	if err == nil {
		doc.Customer = customer

		if doc.Subscriptions, err = gc.repos.Subscription.ListByCustomerID(customer.ID); err != nil {
			return renderError(c, apperr.Database("subscription export failed", err))
		}
		if doc.Invoices, err = gc.repos.Invoice.ListByCustomerID(customer.ID, 0, 1000); err != nil {
			return renderError(c, apperr.Database("invoice export failed", err))
		}
		if doc.Payments, err = gc.repos.Payment.ListByCustomerID(customer.ID); err != nil {
			return renderError(c, apperr.Database("payment export failed", err))
		}
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return renderError(c, apperr.Database("export serialization failed", err))
	}

	if gc.archive != nil {
		key := objectstore.ExportKey(uuid.NewString(), doc.ExportedAt)
		if archiveErr := gc.archive.Put(c.UserContext(), key, body, fiber.MIMEApplicationJSON); archiveErr != nil {
			log.Warnf("[GDPR] export archive failed for user %d: %v", userCtx.UserID, archiveErr)
		}
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="data-export-%d.json"`, userCtx.UserID))
	return c.Send(body)
}

// HandleDelete performs GDPR erasure: the user row is anonymized and
// the billing identity removed, while subscription and invoice history
// stays for audit.
func (gc *GDPRController) HandleDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := gc.repos.User.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.NotFound("user not found"))
		}
		return renderError(c, apperr.Database("user lookup failed", err))
	}

	user.Anonymize()
	if err := gc.repos.User.Update(user); err != nil {
		return renderError(c, apperr.Database("user anonymization failed", err))
	}

	if err := gc.repos.Customer.DeleteByUserID(userCtx.UserID); err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return renderError(c, apperr.Database("billing identity removal failed", err))
	}

	return renderSuccess(c, fiber.Map{"deleted": true})
}
