package habits

var suggestions = [...]string{
    "Carry a water bottle",
    "Use bus/metro",
    "Turn off fans/lights",
    "Two-sided printing",
    "Segregate waste",
    "Short showers",
    "No plastic cutlery",
    "Plant watering schedule",
}

// Suggestions returns the built-in example habit titles.
func Suggestions() []string {
    out := make([]string, len(suggestions))
    copy(out, suggestions[:])
    return out
}
