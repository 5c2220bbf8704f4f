package models

// All lists every entity owned by this service, in migration order.
func All() []any {
	return []any{
		&Project{},
		&BlogPost{},
		&BlogTag{},
		&ContactMessage{},
		&ResumeFile{},
		&AnalyticsEvent{},
		&Review{},
		&AvailabilitySlot{},
	}
}
