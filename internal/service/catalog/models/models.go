package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Request модели

// CreateServiceRequest запрос на создание услуги
type CreateServiceRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	ServiceType       string `json:"serviceType"`
	PricingType       string `json:"pricingType"`
	DeliveryTimeValue int    `json:"deliveryTimeValue"`
	DeliveryTimeUnit  string `json:"deliveryTimeUnit"`
	PriceInCents      int64  `json:"priceInCents"`
	IsActive          *bool  `json:"isActive,omitempty"` // по умолчанию true
}

// UpdateServiceRequest запрос на обновление услуги
// Все поля опциональны - обновляются только переданные значения
type UpdateServiceRequest struct {
	Title             *string `json:"title,omitempty"`
	Description       *string `json:"description,omitempty"`
	ServiceType       *string `json:"serviceType,omitempty"`
	PricingType       *string `json:"pricingType,omitempty"`
	DeliveryTimeValue *int    `json:"deliveryTimeValue,omitempty"`
	DeliveryTimeUnit  *string `json:"deliveryTimeUnit,omitempty"`
	PriceInCents      *int64  `json:"priceInCents,omitempty"`
	IsActive          *bool   `json:"isActive,omitempty"`
}

// Apply переносит переданные поля в описание услуги
func (r *UpdateServiceRequest) Apply(s *domain.ServiceDescriptor) {
	if r.Title != nil {
		s.Title = *r.Title
	}
	if r.Description != nil {
		s.Description = *r.Description
	}
	if r.ServiceType != nil {
		s.ServiceType = domain.ServiceType(*r.ServiceType)
	}
	if r.PricingType != nil {
		s.PricingType = domain.PricingType(*r.PricingType)
	}
	if r.DeliveryTimeValue != nil {
		s.DeliveryTimeValue = *r.DeliveryTimeValue
	}
	if r.DeliveryTimeUnit != nil {
		s.DeliveryTimeUnit = domain.DeliveryTimeUnit(*r.DeliveryTimeUnit)
	}
	if r.PriceInCents != nil {
		s.PriceInCents = *r.PriceInCents
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
}

// Response модели

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID                uuid.UUID `json:"id"`
	ProfessionalID    uuid.UUID `json:"professionalId"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ServiceType       string    `json:"serviceType"`
	PricingType       string    `json:"pricingType"`
	DeliveryTimeValue int       `json:"deliveryTimeValue"`
	DeliveryTimeUnit  string    `json:"deliveryTimeUnit"`
	PriceInCents      int64     `json:"priceInCents"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// DeleteServiceResponse результат удаления услуги
type DeleteServiceResponse struct {
	// Archived true, если услуга деактивирована вместо удаления (есть история бронирований)
	Archived bool `json:"archived"`
}

// DeliveryEstimateResponse расчетная дата сдачи работы
type DeliveryEstimateResponse struct {
	ServiceID         uuid.UUID `json:"serviceId"`
	From              time.Time `json:"from"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
}

// FromDomainService конвертирует domain модель в DTO
func FromDomainService(s *domain.ServiceDescriptor) *ServiceResponse {
	if s == nil {
		return nil
	}

	return &ServiceResponse{
		ID:                s.ID,
		ProfessionalID:    s.ProfessionalID,
		Title:             s.Title,
		Description:       s.Description,
		ServiceType:       string(s.ServiceType),
		PricingType:       string(s.PricingType),
		DeliveryTimeValue: s.DeliveryTimeValue,
		DeliveryTimeUnit:  string(s.DeliveryTimeUnit),
		PriceInCents:      s.PriceInCents,
		IsActive:          s.IsActive,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
