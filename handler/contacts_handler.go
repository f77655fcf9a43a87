package handler

import (
	"context"

	"safeher/dto"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

type ContactService interface {
	List(ctx context.Context, userID string) ([]dto.ContactResponse, error)
	Get(ctx context.Context, userID, id string) (*dto.ContactResponse, error)
	Create(ctx context.Context, userID string, req dto.CreateContactRequest) (*dto.ContactResponse, error)
	Update(ctx context.Context, userID, id string, req dto.UpdateContactRequest) (*dto.ContactResponse, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
	Count(ctx context.Context, userID string) (*dto.ContactCountResponse, error)
}

type ContactHandler struct {
	contacts ContactService
}

func NewContactHandler(contacts ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	contacts, err := h.contacts.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch contacts")
		return
	}
	utils.Success(c, gin.H{"contacts": contacts, "count": len(contacts)})
}

func (h *ContactHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	contact, err := h.contacts.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch contact")
		return
	}
	utils.Success(c, contact)
}

func (h *ContactHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateContactRequest
	if !bindJSON(c, &req, false) {
		return
	}
	contact, err := h.contacts.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to add contact")
		return
	}
	utils.Created(c, "Emergency contact added", contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateContactRequest
	if !bindJSON(c, &req, false) {
		return
	}
	contact, err := h.contacts.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update contact")
		return
	}
	utils.SuccessMessage(c, "Contact updated", contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.contacts.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete contact")
		return
	}
	utils.SuccessMessage(c, "Contact deleted", nil)
}

func (h *ContactHandler) DeleteAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.contacts.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to delete contacts")
		return
	}
	utils.SuccessMessage(c, "All contacts deleted", gin.H{"deleted": n})
}

func (h *ContactHandler) Count(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	count, err := h.contacts.Count(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to count contacts")
		return
	}
	utils.Success(c, count)
}
