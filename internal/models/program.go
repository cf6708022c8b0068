package models

// Program is one instrument or discipline taught at the school.
type Program struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var programs = []Program{
	{Name: "Violin", Description: "Master bowing techniques and expressive dynamics."},
	{Name: "Viola", Description: "Explore the rich, deep tonal qualities of the viola."},
	{Name: "Cello", Description: "Develop strong resonance and foundational technique."},
	{Name: "Flute", Description: "Refine breath control and articulation."},
	{Name: "Clarinet", Description: "Focus on embouchure and finger dexterity."},
	{Name: "Trumpet", Description: "Build range, tone, and projection."},
	{Name: "Recorder", Description: "Advanced ensemble work and breath control."},
	{Name: "Marimba", Description: "Rhythmic precision and melodic percussion."},
	{Name: "Percussion", Description: "Comprehensive training in rhythm and timing."},
	{Name: "Dance", Description: "Movement, discipline, and cultural expression."},
}

// Programs returns the catalogue in display order.
func Programs() []Program {
	out := make([]Program, len(programs))
	copy(out, programs)
	return out
}

// IsProgram reports whether name is in the catalogue.
func IsProgram(name string) bool {
	for _, p := range programs {
		if p.Name == name {
			return true
		}
	}
	return false
}
