package invoicing_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

// memStore almacén en memoria con transacciones por snapshot: si fn falla se restaura el estado.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	providers   []entity.Provider
	offices     []entity.Office
	contracts   []entity.Contract
	invoices    []entity.Invoice
	assignments []entity.InvoiceOffice

	failAssignmentForOffice string
	txCount                 int
}

type snapshot struct {
	providers   []entity.Provider
	offices     []entity.Office
	contracts   []entity.Contract
	invoices    []entity.Invoice
	assignments []entity.InvoiceOffice
}

func newMemStore() *memStore { return &memStore{} }

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		providers:   append([]entity.Provider(nil), s.providers...),
		offices:     append([]entity.Office(nil), s.offices...),
		contracts:   append([]entity.Contract(nil), s.contracts...),
		invoices:    append([]entity.Invoice(nil), s.invoices...),
		assignments: append([]entity.InvoiceOffice(nil), s.assignments...),
	}
}

func (s *memStore) restore(sn snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers, s.offices, s.contracts = sn.providers, sn.offices, sn.contracts
	s.invoices, s.assignments = sn.invoices, sn.assignments
}

func (s *memStore) RunInvoicing(ctx context.Context, fn func(
	repository.InvoiceRepository,
	repository.InvoiceOfficeRepository,
	repository.ContractRepository,
	repository.ProviderRepository,
	repository.OfficeRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.txCount++
	sn := s.snapshot()
	if err := fn(s.invoiceRepo(), s.assignmentRepo(), s.contractRepo(), s.providerRepo(), s.officeRepo()); err != nil {
		s.restore(sn)
		return err
	}
	return nil
}

func (s *memStore) invoiceRepo() *memInvoices       { return &memInvoices{s} }
func (s *memStore) assignmentRepo() *memAssignments { return &memAssignments{s} }
func (s *memStore) contractRepo() *memContracts     { return &memContracts{s} }
func (s *memStore) providerRepo() *memProviders     { return &memProviders{s} }
func (s *memStore) officeRepo() *memOffices         { return &memOffices{s} }

// ── seeds ─────────────────────────────────────────────────────────────────────

func (s *memStore) addProvider(p entity.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers = append(s.providers, p)
}

func (s *memStore) addOffice(o entity.Office) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offices = append(s.offices, o)
}

func (s *memStore) addContract(c entity.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts = append(s.contracts, c)
}

func (s *memStore) countAssignments(invoiceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.assignments {
		if a.InvoiceID == invoiceID {
			n++
		}
	}
	return n
}

func (s *memStore) invoice(id string) *entity.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].ID == id {
			inv := s.invoices[i]
			return &inv
		}
	}
	return nil
}

// ── providers ─────────────────────────────────────────────────────────────────

type memProviders struct{ s *memStore }

var _ repository.ProviderRepository = (*memProviders)(nil)

func (r *memProviders) Create(_ context.Context, p *entity.Provider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.providers {
		if e.TaxID == p.TaxID {
			return domain.ErrDuplicate
		}
	}
	r.s.providers = append(r.s.providers, *p)
	return nil
}

func (r *memProviders) find(match func(entity.Provider) bool) *entity.Provider {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.providers {
		if match(p) {
			out := p
			return &out
		}
	}
	return nil
}

func (r *memProviders) GetByID(_ context.Context, id string) (*entity.Provider, error) {
	return r.find(func(p entity.Provider) bool { return p.ID == id }), nil
}

func (r *memProviders) GetByTaxID(_ context.Context, taxID string) (*entity.Provider, error) {
	return r.find(func(p entity.Provider) bool { return p.TaxID == taxID }), nil
}

func (r *memProviders) List(_ context.Context, search string, _, _ int) ([]*entity.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Provider
	for _, p := range r.s.providers {
		if search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *memProviders) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.ProviderID == id {
			return domain.ErrConflict
		}
	}
	for i, p := range r.s.providers {
		if p.ID == id {
			r.s.providers = append(r.s.providers[:i], r.s.providers[i+1:]...)
			return nil
		}
	}
	return nil
}

// ── offices ───────────────────────────────────────────────────────────────────

type memOffices struct{ s *memStore }

var _ repository.OfficeRepository = (*memOffices)(nil)

func (r *memOffices) Create(_ context.Context, o *entity.Office) error {
	r.s.addOffice(*o)
	return nil
}

func (r *memOffices) find(match func(entity.Office) bool) *entity.Office {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.offices {
		if match(o) {
			out := o
			return &out
		}
	}
	return nil
}

func (r *memOffices) GetByID(_ context.Context, id string) (*entity.Office, error) {
	return r.find(func(o entity.Office) bool { return o.ID == id }), nil
}

func (r *memOffices) GetByCode(_ context.Context, code string) (*entity.Office, error) {
	if code == "" {
		return nil, nil
	}
	return r.find(func(o entity.Office) bool { return o.Code == code }), nil
}

func (r *memOffices) ListByIDs(_ context.Context, ids []string) ([]*entity.Office, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Office
	for _, o := range r.s.offices {
		if want[o.ID] {
			o := o
			out = append(out, &o)
		}
	}
	return out, nil
}

func (r *memOffices) List(_ context.Context, _ string, _, _ int) ([]*entity.Office, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Office, 0, len(r.s.offices))
	for _, o := range r.s.offices {
		o := o
		out = append(out, &o)
	}
	return out, nil
}

// ── contracts ─────────────────────────────────────────────────────────────────

type memContracts struct{ s *memStore }

var _ repository.ContractRepository = (*memContracts)(nil)

func (r *memContracts) Create(_ context.Context, c *entity.Contract) error {
	r.s.addContract(*c)
	return nil
}

func (r *memContracts) filter(match func(entity.Contract) bool) []*entity.Contract {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Contract
	for _, c := range r.s.contracts {
		if match(c) {
			c := c
			out = append(out, &c)
		}
	}
	return out
}

func (r *memContracts) GetByID(_ context.Context, id string) (*entity.Contract, error) {
	if l := r.filter(func(c entity.Contract) bool { return c.ID == id }); len(l) > 0 {
		return l[0], nil
	}
	return nil, nil
}

func (r *memContracts) List(_ context.Context, f repository.ContractFilter) ([]*entity.Contract, error) {
	return r.filter(func(c entity.Contract) bool {
		return (f.ProviderID == "" || c.ProviderID == f.ProviderID) &&
			(f.OfficeID == "" || c.OfficeID == f.OfficeID) &&
			(f.Status == "" || c.Status == f.Status)
	}), nil
}

func (r *memContracts) FindByProviderAndOffice(_ context.Context, providerID, officeID string) ([]*entity.Contract, error) {
	return r.filter(func(c entity.Contract) bool { return c.ProviderID == providerID && c.OfficeID == officeID }), nil
}

func (r *memContracts) ListBillable(_ context.Context) ([]*entity.Contract, error) {
	return r.filter(func(c entity.Contract) bool { return c.Billable() }), nil
}

func (r *memContracts) ListByProvider(_ context.Context, providerID string) ([]*entity.Contract, error) {
	return r.filter(func(c entity.Contract) bool { return c.ProviderID == providerID }), nil
}

// ── invoices ──────────────────────────────────────────────────────────────────

type memInvoices struct{ s *memStore }

var _ repository.InvoiceRepository = (*memInvoices)(nil)

func (r *memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.invoices = append(r.s.invoices, *inv)
	return nil
}

func (r *memInvoices) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	return r.s.invoice(id), nil
}

func (r *memInvoices) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *memInvoices) GetByIDs(_ context.Context, ids []string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, id := range ids {
		if inv := r.s.invoice(id); inv != nil {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoices) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.invoices {
		if r.s.invoices[i].ID == inv.ID {
			r.s.invoices[i] = *inv
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memInvoices) UpdateStatus(_ context.Context, id string, status entity.InvoiceStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.invoices {
		if r.s.invoices[i].ID == id {
			r.s.invoices[i].Status = status
			r.s.invoices[i].UpdatedAt = at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memInvoices) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.invoices {
		if r.s.invoices[i].ID == id {
			r.s.invoices = append(r.s.invoices[:i], r.s.invoices[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memInvoices) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.ProviderID != "" && inv.ProviderID != f.ProviderID {
			continue
		}
		if f.Search != "" && !strings.Contains(inv.Number, f.Search) {
			continue
		}
		inv := inv
		out = append(out, &inv)
	}
	return out, len(out), nil
}

func (r *memInvoices) Summary(_ context.Context) (*repository.InvoiceSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s := &repository.InvoiceSummary{Total: len(r.s.invoices)}
	for _, inv := range r.s.invoices {
		switch inv.Status {
		case entity.InvoicePending:
			s.Pending++
		case entity.InvoiceAssigned:
			s.Assigned++
		case entity.InvoicePaid:
			s.Paid++
		}
	}
	return s, nil
}

// ── assignments ───────────────────────────────────────────────────────────────

type memAssignments struct{ s *memStore }

var _ repository.InvoiceOfficeRepository = (*memAssignments)(nil)

var errInjected = errors.New("fallo inyectado")

func (r *memAssignments) Create(_ context.Context, a *entity.InvoiceOffice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAssignmentForOffice != "" && a.OfficeID == r.s.failAssignmentForOffice {
		return errInjected
	}
	r.s.assignments = append(r.s.assignments, *a)
	return nil
}

func (r *memAssignments) GetByID(_ context.Context, id string) (*entity.InvoiceOffice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assignments {
		if a.ID == id {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memAssignments) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.InvoiceOffice, error) {
	return r.ListByInvoices(ctx, []string{invoiceID})
}

func (r *memAssignments) ListByInvoices(_ context.Context, ids []string) ([]*entity.InvoiceOffice, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InvoiceOffice
	for _, a := range r.s.assignments {
		if want[a.InvoiceID] {
			a := a
			out = append(out, &a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memAssignments) Update(_ context.Context, a *entity.InvoiceOffice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.assignments {
		if r.s.assignments[i].ID == a.ID {
			r.s.assignments[i] = *a
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memAssignments) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.assignments {
		if r.s.assignments[i].ID == id {
			r.s.assignments = append(r.s.assignments[:i], r.s.assignments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memAssignments) DeleteByInvoice(_ context.Context, invoiceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.assignments[:0:0]
	for _, a := range r.s.assignments {
		if a.InvoiceID != invoiceID {
			kept = append(kept, a)
		}
	}
	r.s.assignments = kept
	return nil
}

func (r *memAssignments) CountByInvoice(_ context.Context, invoiceID string) (int, error) {
	return r.s.countAssignments(invoiceID), nil
}

func (r *memAssignments) ContractIDsInvoicedBetween(_ context.Context, from, to time.Time) ([]string, error) {
	r.s.mu.Lock()
	invoices := make(map[string]entity.Invoice, len(r.s.invoices))
	for _, inv := range r.s.invoices {
		invoices[inv.ID] = inv
	}
	assignments := append([]entity.InvoiceOffice(nil), r.s.assignments...)
	r.s.mu.Unlock()

	var out []string
	for _, a := range assignments {
		if a.ContractID == "" {
			continue
		}
		inv, ok := invoices[a.InvoiceID]
		if !ok {
			continue
		}
		d := inv.EffectiveDate()
		if !d.Before(from) && d.Before(to) {
			out = append(out, a.ContractID)
		}
	}
	return out, nil
}

// ── directorio ────────────────────────────────────────────────────────────────

type fakeDirectory struct {
	names map[string]string
	err   error
	calls int
}

func (d *fakeDirectory) ProviderName(_ context.Context, taxID string) (string, error) {
	d.calls++
	if d.err != nil {
		return "", d.err
	}
	name, ok := d.names[taxID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return name, nil
}
