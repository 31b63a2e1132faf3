package multiverse

import "slices"

// Universe is a preset fictional setting. Fields name the details a
// character needs, Examples holds one ready-made value per field, and
// Template carries one positional placeholder ({1}..{n}) per field.
type Universe struct {
	ID       string
	Fields   []string
	Examples []string
	Template string
}

// Registered universe ids.
const (
	Fantasy   = "fantasy"
	SciFi     = "sci-fi"
	Horror    = "horror"
	Cyberpunk = "cyberpunk"
	Anime     = "anime"
	Superhero = "superhero"
)

// registry is populated once at package init and never mutated. Lookups hand
// out clones so callers cannot reach the backing slices.
var registry = []Universe{
	{
		ID:       Fantasy,
		Fields:   []string{"Race", "Class", "Alignment", "Kingdom"},
		Examples: []string{"Elf", "Mage", "Neutral", "Misty Forest"},
		Template: "Create a detailed fantasy character with:\n" +
			"- Race: {1}\n- Class: {2}\n- Alignment: {3}\n- Kingdom: {4}\n" +
			"Include magical abilities, equipment and a dark secret.",
	},
	{
		ID:       SciFi,
		Fields:   []string{"Species", "Profession", "Affiliation", "Home Planet"},
		Examples: []string{"Cyborg", "Starship Pilot", "Galactic Alliance", "Proxima Centauri"},
		Template: "Develop a science fiction character with:\n" +
			"- Species: {1}\n- Profession: {2}\n- Affiliation: {3}\n- Planet: {4}\n" +
			"Describe advanced technology, interstellar conflicts and motivations.",
	},
	{
		ID:       Horror,
		Fields:   []string{"Occupation", "Phobia", "Cursed Relic", "Haunted Place"},
		Examples: []string{"Journalist", "Fear of Spiders", "Ancient Diary", "Abandoned Asylum"},
		Template: "Write a cosmic horror character with:\n" +
			"- Occupation: {1}\n- Phobia: {2}\n- Relic: {3}\n- Place: {4}\n" +
			"Include symptoms of madness, ties to otherworldly entities and a decaying appearance.",
	},
	{
		ID:       Cyberpunk,
		Fields:   []string{"Cybernetic Implants", "Corporate/Gang Affiliation", "Criminal Specialty", "Urban District"},
		Examples: []string{"MK-5 Bionic Arm", "Night City Mercenaries", "ICE Hacker", "Black Market Zone"},
		Template: "Build a noir cyberpunk character with:\n" +
			"- Implants: {1}\n- Affiliation: {2}\n- Specialty: {3}\n- District: {4}\n" +
			"Describe:\n" +
			"1. Visible cybernetic modifications\n" +
			"2. A dystopian personality trait\n" +
			"3. A technological addiction or dependency\n" +
			"4. A conflict with megacorporations\n" +
			"Use cyberpunk slang like 'choomba', 'corpo' and 'netrunner'.",
	},
	{
		ID:       Anime,
		Fields:   []string{"Character Type", "Unique Ability", "Backstory", "Goal"},
		Examples: []string{"Shonen Protagonist", "Rasengan", "War Orphan", "Become Hokage"},
		Template: "Create a detailed anime character with:\n" +
			"1. Type: {1}\n2. Ability: {2}\n3. Backstory: {3}\n4. Goal: {4}\n\n" +
			"Include:\n" +
			"- A secret power or transformation\n" +
			"- A signature motto\n" +
			"- An iconic visual design (hair, outfit)\n" +
			"- An emotional weakness\n\n" +
			"Style: use terms like 'nakama', 'power-up' and dramatic exclamations!",
	},
	{
		ID:       Superhero,
		Fields:   []string{"Power Origin", "Affiliation", "Archetype", "Location"},
		Examples: []string{"Cosmic Radiation", "Avengers", "Anti-Hero", "New York"},
		Template: "Develop a superhero universe character with:\n" +
			"1. Origin: {1}\n2. Affiliation: {2}\n3. Archetype: {3}\n4. Base: {4}\n\n" +
			"Detail:\n" +
			"- A distinctive costume\n" +
			"- A recurring moral conflict\n" +
			"- An iconic relationship with another hero or villain\n" +
			"- A catchphrase\n\n" +
			"Style: mix grand action with human dilemmas.",
	},
}

// Universes returns every registered universe in registry order.
func Universes() []Universe {
	out := make([]Universe, len(registry))
	for i, u := range registry {
		out[i] = u.clone()
	}
	return out
}

// UniverseIDs returns the registered universe ids in registry order.
func UniverseIDs() []string {
	ids := make([]string, len(registry))
	for i, u := range registry {
		ids[i] = u.ID
	}
	return ids
}

// LookupUniverse returns the universe registered under id. Unknown ids fail
// with an *UnknownUniverseError listing every valid id.
func LookupUniverse(id string) (Universe, error) {
	for _, u := range registry {
		if u.ID == id {
			return u.clone(), nil
		}
	}
	return Universe{}, &UnknownUniverseError{ID: id, Valid: UniverseIDs()}
}

func (u Universe) clone() Universe {
	u.Fields = slices.Clone(u.Fields)
	u.Examples = slices.Clone(u.Examples)
	return u
}
