package models

// All lists every persisted model, in dependency order, for AutoMigrate in
// tests and SQLite runs.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Medicine{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&Coupon{},
		&Banner{},
		&HeroSlide{},
		&Review{},
	}
}
