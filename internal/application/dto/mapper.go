package dto

import (
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// FromProvider convierte la entidad a respuesta.
func FromProvider(p *entity.Provider) ProviderResponse {
	return ProviderResponse{ID: p.ID, TaxID: p.TaxID, Name: p.Name, CreatedAt: p.CreatedAt}
}

// FromOffice convierte la entidad a respuesta.
func FromOffice(o *entity.Office) OfficeResponse {
	return OfficeResponse{
		ID:       o.ID,
		Code:     o.Code,
		Name:     o.Name,
		SiteType: o.SiteType,
		Address:  o.Address,
		City:     o.City,
		Zone:     o.Zone,
	}
}

// FromContract convierte la entidad a respuesta.
func FromContract(c *entity.Contract) ContractResponse {
	return ContractResponse{
		ID:             c.ID,
		ProviderID:     c.ProviderID,
		OfficeID:       c.OfficeID,
		Number:         c.Number,
		HolderName:     c.HolderName,
		HolderTaxID:    c.HolderTaxID,
		Line:           c.Line,
		PlanType:       c.PlanType,
		PaymentRef:     c.PaymentRef,
		MonthlyValue:   c.MonthlyValue,
		Status:         string(c.Status),
		HasVAT:         c.HasVAT,
		HasWithholding: c.HasWithholding,
		WithholdingPct: c.WithholdingPct,
		StartDate:      FormatDate(c.StartDate),
		EndDate:        FormatDate(c.EndDate),
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
	}
}

// FromAssignment convierte la asignación; office puede ser nil.
func FromAssignment(a *entity.InvoiceOffice, office *entity.Office) AssignmentResponse {
	out := AssignmentResponse{
		ID:         a.ID,
		InvoiceID:  a.InvoiceID,
		OfficeID:   a.OfficeID,
		ContractID: a.ContractID,
		Value:      a.Value,
		Status:     string(a.Status),
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
	}
	if office != nil {
		out.OfficeCode = office.Code
		out.OfficeName = office.Name
	}
	return out
}
