package datagen

// AvailableRegions lists the regions with curated base price levels, in
// dashboard display order.
func AvailableRegions() []string {
	return []string{"Москва", "Санкт-Петербург", "Новосибирск", "Екатеринбург", "Казань"}
}

// AvailableLanguages lists the programming languages with curated base
// salary levels.
func AvailableLanguages() []string {
	return []string{"Python", "Java", "C#", "JavaScript", "Golang", "Rust"}
}

// AvailableRoomOptions lists the apartment size selectors.
func AvailableRoomOptions() []string {
	return []string{"1", "2", "3", "4+"}
}
