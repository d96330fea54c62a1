package models

// Identifier is implemented by models with an int primary key.
type Identifier interface {
	GetId() int
}

func (a Academy) GetAcademyId() string {
	return a.ID.String()
}

func (b Branch) GetAcademyId() string {
	return b.AcademyId
}

func (m Member) GetAcademyId() string {
	return m.AcademyId
}

func (p Payment) GetAcademyId() string {
	return p.AcademyId
}

func (a AttendanceRecord) GetAcademyId() string {
	return a.AcademyId
}

func (c CalendarEvent) GetAcademyId() string {
	return c.AcademyId
}

func (f FinanceTransaction) GetAcademyId() string {
	return f.AcademyId
}

func (h History) GetAcademyId() string {
	return h.AcademyId
}

func (u User) GetAcademyId() string {
	return u.AcademyId
}

func (k IdempotencyKey) GetAcademyId() string {
	return k.AcademyId
}
