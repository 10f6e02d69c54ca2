package user

// DefaultRoster is the demo roster the service boots with.
func DefaultRoster() []Record {
	return []Record{
		{ID: 1, Name: "Yassine Belkacem", Role: "Cloud Engineer", Location: "Paris, FR", JoinedAt: "2024-02-01T09:00:00.000Z"},
		{ID: 2, Name: "Lina Chen", Role: "Product Manager", Location: "Toronto, CA", JoinedAt: "2023-10-12T09:00:00.000Z"},
		{ID: 3, Name: "Marcus Silva", Role: "SRE", Location: "Lisbon, PT", JoinedAt: "2025-03-05T09:00:00.000Z"},
		{ID: 4, Name: "Aïcha Diallo", Role: "Data Lead", Location: "Dakar, SN", JoinedAt: "2022-07-22T09:00:00.000Z"},
		{ID: 5, Name: "Sophie Dubois", Role: "UX Designer", Location: "Lyon, FR", JoinedAt: "2026-02-12T10:00:00.000Z"},
	}
}
