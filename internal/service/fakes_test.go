package service

import (
	"context"
	"time"

	"github.com/yourorg/rentease/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type memUserRepo struct {
	seq   int64
	users map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	m.seq++
	u.ID = m.seq
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.NotFound("user %d not found", id)
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.NotFound("user not found")
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.NotFound("user not found")
}

func (m *memUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return domain.NotFound("user %d not found", u.ID)
	}
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok {
		return domain.NotFound("user %d not found", id)
	}
	u.IsActive = false
	return nil
}

func (m *memUserRepo) List(_ context.Context, role domain.Role) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserRepo) ListTenantsForOwner(_ context.Context, _ int64) ([]*domain.User, error) {
	return nil, nil
}

func (m *memUserRepo) SetProfilePicture(_ context.Context, userID int64, fileID *int64) error {
	u, ok := m.users[userID]
	if !ok {
		return domain.NotFound("user %d not found", userID)
	}
	u.ProfilePictureID = fileID
	return nil
}

type memUnitRepo struct {
	seq   int64
	units map[int64]*domain.Unit
}

func newMemUnitRepo() *memUnitRepo {
	return &memUnitRepo{units: map[int64]*domain.Unit{}}
}

func (m *memUnitRepo) Create(_ context.Context, u *domain.Unit) error {
	m.seq++
	u.ID = m.seq
	m.units[u.ID] = u
	return nil
}

func (m *memUnitRepo) GetByID(_ context.Context, id int64) (*domain.Unit, error) {
	if u, ok := m.units[id]; ok {
		return u, nil
	}
	return nil, domain.NotFound("unit %d not found", id)
}

func (m *memUnitRepo) Update(_ context.Context, u *domain.Unit) error {
	m.units[u.ID] = u
	return nil
}

func (m *memUnitRepo) Delete(_ context.Context, id int64) error {
	delete(m.units, id)
	return nil
}

func (m *memUnitRepo) ListByProperty(_ context.Context, propertyID int64) ([]*domain.Unit, error) {
	var out []*domain.Unit
	for _, u := range m.units {
		if u.PropertyID == propertyID {
			out = append(out, u)
		}
	}
	return out, nil
}

type memLeaseRepo struct {
	seq    int64
	leases map[int64]*domain.Lease
	users  *memUserRepo
}

func newMemLeaseRepo(users *memUserRepo) *memLeaseRepo {
	return &memLeaseRepo{leases: map[int64]*domain.Lease{}, users: users}
}

func (m *memLeaseRepo) Create(_ context.Context, l *domain.Lease) error {
	m.seq++
	l.ID = m.seq
	l.IsActive = true
	l.CreatedAt = time.Now()
	m.leases[l.ID] = l
	return nil
}

func (m *memLeaseRepo) GetByID(ctx context.Context, id int64) (*domain.Lease, error) {
	l, ok := m.leases[id]
	if !ok {
		return nil, domain.NotFound("lease %d not found", id)
	}
	if m.users != nil && l.Tenant == nil {
		if tenant, err := m.users.GetByID(ctx, l.TenantID); err == nil {
			l.Tenant = tenant
		}
	}
	return l, nil
}

func (m *memLeaseRepo) SetEnded(_ context.Context, id int64, endDate time.Time) error {
	l, ok := m.leases[id]
	if !ok {
		return domain.NotFound("lease %d not found", id)
	}
	l.EndDate = &endDate
	l.IsActive = false
	return nil
}

func (m *memLeaseRepo) SetActive(_ context.Context, id int64) error {
	l, ok := m.leases[id]
	if !ok {
		return domain.NotFound("lease %d not found", id)
	}
	l.IsActive = true
	return nil
}

func (m *memLeaseRepo) List(_ context.Context) ([]*domain.Lease, error) {
	var out []*domain.Lease
	for _, l := range m.leases {
		out = append(out, l)
	}
	return out, nil
}

func (m *memLeaseRepo) ListByTenant(_ context.Context, tenantID int64) ([]*domain.Lease, error) {
	var out []*domain.Lease
	for _, l := range m.leases {
		if l.TenantID == tenantID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLeaseRepo) ListByOwner(_ context.Context, _ int64) ([]*domain.Lease, error) {
	return nil, nil
}

func (m *memLeaseRepo) FindActiveByUnit(_ context.Context, unitID int64) ([]*domain.Lease, error) {
	var out []*domain.Lease
	for _, l := range m.leases {
		if l.UnitID == unitID && l.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}

type memPaymentRepo struct {
	seq      int64
	payments map[int64]*domain.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: map[int64]*domain.Payment{}}
}

func (m *memPaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	m.seq++
	p.ID = m.seq
	p.CreatedAt = time.Now()
	m.payments[p.ID] = p
	return nil
}

func (m *memPaymentRepo) CreateBatch(ctx context.Context, payments []*domain.Payment) error {
	for _, p := range payments {
		if err := m.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (m *memPaymentRepo) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, domain.NotFound("payment %d not found", id)
}

func (m *memPaymentRepo) Update(_ context.Context, p *domain.Payment) error {
	m.payments[p.ID] = p
	return nil
}

func (m *memPaymentRepo) SetPaid(_ context.Context, id int64, isPaid bool) (*domain.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, domain.NotFound("payment %d not found", id)
	}
	p.IsPaid = isPaid
	return p, nil
}

func (m *memPaymentRepo) AttachInvoice(_ context.Context, id, fileID int64) (*domain.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, domain.NotFound("payment %d not found", id)
	}
	p.InvoiceFileID = &fileID
	return p, nil
}

func (m *memPaymentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.payments[id]; !ok {
		return domain.NotFound("payment %d not found", id)
	}
	delete(m.payments, id)
	return nil
}

func (m *memPaymentRepo) List(_ context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range m.payments {
		if filter.IsPaid != nil && p.IsPaid != *filter.IsPaid {
			continue
		}
		if filter.LeaseID != nil && (p.LeaseID == nil || *p.LeaseID != *filter.LeaseID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memPaymentRepo) ListOverdue(_ context.Context, asOf time.Time, _ *int64) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range m.payments {
		if !p.IsPaid && p.DueDate.Before(asOf.Truncate(24*time.Hour)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPaymentRepo) CountByStatus(_ context.Context, _ *int64) (int, int, error) {
	total, paid := 0, 0
	for _, p := range m.payments {
		total++
		if p.IsPaid {
			paid++
		}
	}
	return total, paid, nil
}

type memFileRepo struct {
	seq   int64
	files map[int64]*domain.File
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: map[int64]*domain.File{}}
}

func (m *memFileRepo) Create(_ context.Context, f *domain.File) error {
	m.seq++
	f.ID = m.seq
	f.UploadedAt = time.Now()
	m.files[f.ID] = f
	return nil
}

func (m *memFileRepo) GetByID(_ context.Context, id int64) (*domain.File, error) {
	if f, ok := m.files[id]; ok {
		meta := *f
		meta.Data = nil
		return &meta, nil
	}
	return nil, domain.NotFound("file %d not found", id)
}

func (m *memFileRepo) GetWithData(_ context.Context, id int64) (*domain.File, error) {
	if f, ok := m.files[id]; ok {
		return f, nil
	}
	return nil, domain.NotFound("file %d not found", id)
}

func (m *memFileRepo) Delete(_ context.Context, id int64) error {
	delete(m.files, id)
	return nil
}

func (m *memFileRepo) List(_ context.Context) ([]*domain.File, error) {
	var out []*domain.File
	for _, f := range m.files {
		out = append(out, f)
	}
	return out, nil
}
