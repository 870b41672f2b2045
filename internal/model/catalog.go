package model

// Occupant занимает одно место в слоте.
type Occupant struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	BookedAt Timestamp `json:"timestamp"`
}

// Slot — окно записи на конкретную дату с фиксированной вместимостью.
// Date и Time используются только для отображения, вся арифметика идёт по StartsAt/EndsAt.
type Slot struct {
	ID       string     `json:"id"`
	Date     string     `json:"date"`
	Time     string     `json:"time"`
	StartsAt Timestamp  `json:"starts_at"`
	EndsAt   Timestamp  `json:"ends_at"`
	Capacity int        `json:"max_capacity"`
	Users    []Occupant `json:"users"`
}

// FreeCount возвращает количество свободных мест.
func (s *Slot) FreeCount() int {
	free := s.Capacity - len(s.Users)
	if free < 0 {
		return 0
	}
	return free
}

// HasOccupant сообщает, занимает ли userID место в слоте.
func (s *Slot) HasOccupant(userID string) bool {
	return s.occupantIndex(userID) >= 0
}

func (s *Slot) occupantIndex(userID string) int {
	for i, o := range s.Users {
		if o.UserID == userID {
			return i
		}
	}
	return -1
}

// Reservation — единственная активная запись пользователя.
type Reservation struct {
	UserID   string    `json:"user_id,omitempty"`
	SlotID   string    `json:"slot_key"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	UserName string    `json:"user_name"`
	BookedAt Timestamp `json:"timestamp"`
}

// Catalog хранит все слоты и все записи как единую область согласованности.
type Catalog struct {
	Users      map[string]Reservation `json:"users"`
	Slots      map[string]*Slot       `json:"slots"`
	LastUpdate Timestamp              `json:"last_update"`
}

// NewCatalog возвращает пустой каталог: без слотов и без записей.
func NewCatalog() *Catalog {
	return &Catalog{
		Users: make(map[string]Reservation),
		Slots: make(map[string]*Slot),
	}
}

// EnsureMaps инициализирует nil-отображения после декодирования документа.
func (c *Catalog) EnsureMaps() {
	if c.Users == nil {
		c.Users = make(map[string]Reservation)
	}
	if c.Slots == nil {
		c.Slots = make(map[string]*Slot)
	}
}

// Clone делает глубокую копию каталога.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		Users:      make(map[string]Reservation, len(c.Users)),
		Slots:      make(map[string]*Slot, len(c.Slots)),
		LastUpdate: c.LastUpdate,
	}
	for id, r := range c.Users {
		out.Users[id] = r
	}
	for id, s := range c.Slots {
		cp := *s
		if s.Users != nil {
			cp.Users = make([]Occupant, len(s.Users))
			copy(cp.Users, s.Users)
		}
		out.Slots[id] = &cp
	}
	return out
}
