package trip

// PaletteColor is a named theme color offered by the trip color picker.
type PaletteColor struct {
	Name  string `json:"name"`
	Value string `json:"value"` // hex code
}

// ChicPalette is the set of theme colors a trip can be tagged with.
var ChicPalette = []PaletteColor{
	{Name: "Midnight", Value: "#1e293b"},
	{Name: "Charcoal", Value: "#334155"},
	{Name: "Stone", Value: "#57534e"},
	{Name: "Terracotta", Value: "#ad4925"},
	{Name: "Clay", Value: "#e07a5f"},
	{Name: "Sage", Value: "#84a98c"},
	{Name: "Olive", Value: "#556b2f"},
	{Name: "Sand", Value: "#d4a373"},
	{Name: "Muted Blue", Value: "#64748b"},
	{Name: "Navy", Value: "#1e3a8a"},
	{Name: "Dusty Rose", Value: "#b5838d"},
}

// DefaultThemeColor is applied when a trip is created without a color.
var DefaultThemeColor = ChicPalette[0].Value
