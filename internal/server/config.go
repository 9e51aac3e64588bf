package server

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/acadien/deuxcents/internal/deck"
	"github.com/acadien/deuxcents/internal/game"
	"github.com/acadien/deuxcents/internal/lobby"
)

// SeedConfig describes the well-known public tables created at startup
type SeedConfig struct {
	Tables []SeedTable `hcl:"table,block"`
}

// SeedTable is one seeded table: its rule set plus the skills of the
// house bots pre-seated at it. Bots fill seats from position 1 up,
// leaving seat 0 for the first human.
type SeedTable struct {
	Name               string   `hcl:"name,label"`
	DeckVariant        int      `hcl:"deck_variant,optional"`
	ScoreTarget        int      `hcl:"score_target,optional"`
	TimeoutMS          int      `hcl:"timeout_ms,optional"`
	Kitty              bool     `hcl:"kitty,optional"`
	AllowPointDiscards bool     `hcl:"allow_point_discards,optional"`
	EnforceOpposingBid bool     `hcl:"enforce_opposing_bid,optional"`
	BotSkills          []string `hcl:"bot_skills,optional"`
}

// houseCreator owns the seeded tables; no client can claim the name
// because the registry reserves it at startup.
const houseCreator = "la maison"

// DefaultSeedConfig is the compiled-in seed used when no file is given
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Tables: []SeedTable{
			{
				Name:      "Standard Table",
				BotSkills: []string{"medium", "medium", "medium"},
			},
			{
				Name:        "Kitty Table",
				DeckVariant: 40,
				Kitty:       true,
				BotSkills:   []string{"medium", "medium", "medium"},
			},
			{
				Name:               "Big Bub",
				ScoreTarget:        1000,
				EnforceOpposingBid: true,
				BotSkills:          []string{"hard", "hard", "hard"},
			},
			{
				Name:        "Acadie",
				DeckVariant: 40,
				Kitty:       true,
				ScoreTarget: 300,
				BotSkills:   []string{"advanced", "advanced", "advanced"},
			},
		},
	}
}

// LoadSeedConfig reads seed tables from an HCL file, falling back to
// the compiled-in defaults when the file does not exist.
func LoadSeedConfig(filename string) (*SeedConfig, error) {
	if filename == "" {
		return DefaultSeedConfig(), nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultSeedConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config SeedConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	return &config, nil
}

// tableConfig fills in the defaults a seed block omits
func (st SeedTable) tableConfig() lobby.TableConfig {
	cfg := lobby.DefaultTableConfig()
	if st.DeckVariant != 0 {
		cfg.Variant = deck.Variant(st.DeckVariant)
	}
	if st.Kitty {
		cfg.Kitty = true
		cfg.Variant = deck.Variant40
	}
	if st.ScoreTarget != 0 {
		cfg.ScoreTarget = st.ScoreTarget
	}
	if st.TimeoutMS != 0 {
		cfg.TimeoutMS = st.TimeoutMS
	}
	cfg.AllowPointDiscards = st.AllowPointDiscards
	cfg.EnforceOpposingBid = st.EnforceOpposingBid
	return cfg
}

// SeedTables creates the configured tables in the default lobby
func (s *Service) SeedTables(cfg *SeedConfig) error {
	s.names.Reserve(houseCreator)
	for _, st := range cfg.Tables {
		t, err := lobby.NewTable(uuid.NewString(), st.Name, houseCreator, st.tableConfig(), false, "")
		if err != nil {
			return fmt.Errorf("seed table %q: %w", st.Name, err)
		}
		if err := s.registry.CreateTable(lobby.DefaultLobby, t); err != nil {
			return fmt.Errorf("seed table %q: %w", st.Name, err)
		}
		for i, skillName := range st.BotSkills {
			skill, err := game.ParseBotSkill(skillName)
			if err != nil {
				return fmt.Errorf("seed table %q: %w", st.Name, err)
			}
			botName := s.names.Reserve(lobby.NextBotName())
			if _, err := t.AddBot(houseCreator, botName, i+1, skill); err != nil {
				return fmt.Errorf("seed table %q: %w", st.Name, err)
			}
		}
		s.log.Info("seeded table", "name", st.Name, "bots", len(st.BotSkills))
	}
	return nil
}
