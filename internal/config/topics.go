package config

import (
	"sort"

	"EnergyDigest/internal/domain"
)

// TopicConfig is one digest topic as written in YAML. List order is the
// display order; Rank is the specificity (lower wins conflicts).
type TopicConfig struct {
	Name        string   `yaml:"name"`
	Icon        string   `yaml:"icon"`
	Description string   `yaml:"description"`
	Guidance    string   `yaml:"guidance"`
	Rank        int      `yaml:"rank"`
	Keywords    []string `yaml:"keywords"`
}

// DomainTopics converts the configured topics, preserving display order.
func (c Config) DomainTopics() []domain.Topic {
	topics := make([]domain.Topic, 0, len(c.Topics))
	for _, t := range c.Topics {
		keywords := make([]string, len(t.Keywords))
		copy(keywords, t.Keywords)
		topics = append(topics, domain.Topic{
			Name:        t.Name,
			Icon:        t.Icon,
			Keywords:    keywords,
			Description: t.Description,
			Guidance:    t.Guidance,
			Rank:        t.Rank,
		})
	}
	return topics
}

// SpecificityOrder lists topic names most specific first.
func (c Config) SpecificityOrder() []string {
	topics := c.DomainTopics()
	sort.SliceStable(topics, func(i, j int) bool { return topics[i].Rank < topics[j].Rank })
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names
}

// TopicIcons maps topic names to their icons.
func (c Config) TopicIcons() map[string]string {
	icons := make(map[string]string, len(c.Topics))
	for _, t := range c.Topics {
		icons[t.Name] = t.Icon
	}
	return icons
}

// DefaultTopics returns the built-in energy security topic table.
func DefaultTopics() []TopicConfig {
	return []TopicConfig{
		{
			Name:        "AI & Data Centers",
			Icon:        "🤖",
			Rank:        4,
			Description: "Electricity demand and energy supply for artificial intelligence, data centers, hyperscalers and cloud computing.",
			Guidance:    "Product launches, model benchmarks or AI business news without a power, grid or energy angle are LOW.",
			Keywords: []string{
				"artificial intelligence", " ai ", "machine learning", "deep learning",
				"data center", "datacenter", "data centre", "hyperscaler",
				"gpu", "nvidia", "microsoft azure", "google cloud", "amazon aws",
				"cloud computing", "llm", "large language model", "generative ai",
				"chatgpt", "openai", "anthropic", "meta ai",
				"power demand", "compute", "inference", "training cluster",
			},
		},
		{
			Name:        "Renewables",
			Icon:        "🌱",
			Rank:        3,
			Description: "Solar, wind, hydro, geothermal and other renewable generation, plus batteries and grid-scale storage.",
			Guidance:    "Weather reports that merely mention wind or sun are LOW.",
			Keywords: []string{
				"solar", "wind", "hydro", "hydropower", "hydroelectric",
				"geothermal", "renewable", "clean energy", "green energy",
				"offshore wind", "onshore wind", "wind farm", "wind turbine",
				"solar panel", "solar farm", "photovoltaic", "pv ",
				"battery storage", "energy storage", "grid storage",
				"pumped hydro", "tidal", "wave energy",
			},
		},
		{
			Name:        "Nuclear",
			Icon:        "☢️",
			Rank:        1,
			Description: "Civil nuclear power: reactors, small modular reactors, fuel supply, enrichment, waste and regulation.",
			Guidance:    "Nuclear weapons, arms control or military news without a civil power angle are LOW.",
			Keywords: []string{
				"nuclear", "reactor", "uranium", "enrichment", "fission",
				"fusion", "small modular reactor", "smr", "pressurized water",
				"boiling water reactor", "spent fuel", "nuclear waste",
				"vogtle", "westinghouse", "electricite de france", "edf",
				"iaea", "nonproliferation", "nuclear power plant",
			},
		},
		{
			Name:        "Hydrocarbons",
			Icon:        "🛢️",
			Rank:        2,
			Description: "Oil, natural gas, LNG and coal: production, pipelines, refining, prices and the companies involved.",
			Guidance:    "Sanctions or conflicts only count as HIGH when they affect oil or gas supply, prices or infrastructure.",
			Keywords: []string{
				"natural gas", "lng", "liquefied natural gas",
				"oil pipeline", "gas pipeline", "crude oil", "petroleum",
				"oil refinery", "refining", "gasoline", "diesel fuel",
				"fossil fuel", "coal mine", "coal plant", "coal power",
				"shale gas", "fracking", "hydraulic fracturing",
				"offshore drilling", "opec", "oilfield", "oil field",
				"oil price", "gas price", "oil production", "gas production",
				"barrel of oil", "brent crude", "wti crude",
				"petrochemical", "oil major", "oil company",
				"exxon", "chevron", "bp ", "shell oil", "totalenergies",
				"liquefied petroleum", "propane", "natural gas pipeline",
			},
		},
		{
			Name:        "Georgia & Southeast US",
			Icon:        "🍑",
			Rank:        0,
			Description: "Energy and utility news from Georgia and the southeastern United States.",
			Guidance:    "Stories about the country of Georgia, or Southeast news with no energy or utility angle, are LOW.",
			Keywords: []string{
				"georgia", "atlanta", "savannah", "augusta",
				"alabama", "florida", "tennessee", "south carolina", "north carolina",
				"mississippi", "louisiana", "arkansas", "kentucky",
				"southeastern", "southeast us", "appalachian",
				"southern company", "georgia power", "duke energy", "dominion energy",
				"tennessee valley authority", "tva", "entergy",
				"gulf coast", "port of savannah",
			},
		},
	}
}
