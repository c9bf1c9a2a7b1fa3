package campaign

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/HerbHall/campaigndesk/internal/store"
	"github.com/google/uuid"
)

// seedNamespace derives stable IDs for the sample rows so reseeding a fresh
// database yields the same identifiers.
var seedNamespace = uuid.MustParse("6f1c2b8e-9a4d-4f0e-8c3b-2d7a5e9f1b40")

func seedID(kind, key string) string {
	return uuid.NewSHA1(seedNamespace, []byte(kind+"/"+key)).String()
}

func migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create campaign, contact, event and saved response tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS campaign_campaigns (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL,
						description TEXT NOT NULL DEFAULT '',
						start_date TEXT NOT NULL,
						end_date TEXT NOT NULL,
						status TEXT NOT NULL DEFAULT 'planned',
						budget TEXT NOT NULL DEFAULT '',
						target_audience TEXT NOT NULL DEFAULT '',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_campaign_campaigns_status ON campaign_campaigns(status)`,
					`CREATE TABLE IF NOT EXISTS campaign_contacts (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL,
						email TEXT NOT NULL DEFAULT '',
						phone TEXT NOT NULL DEFAULT '',
						location TEXT NOT NULL DEFAULT '',
						level TEXT NOT NULL DEFAULT 'supporter',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_campaign_contacts_level ON campaign_contacts(level)`,
					`CREATE TABLE IF NOT EXISTS campaign_events (
						id TEXT PRIMARY KEY,
						title TEXT NOT NULL,
						date TEXT NOT NULL,
						time TEXT NOT NULL DEFAULT '',
						location TEXT NOT NULL DEFAULT '',
						type TEXT NOT NULL DEFAULT 'other',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_campaign_events_date ON campaign_events(date)`,
					`CREATE TABLE IF NOT EXISTS campaign_responses (
						id TEXT PRIMARY KEY,
						mode TEXT NOT NULL DEFAULT '',
						situation TEXT NOT NULL,
						response TEXT NOT NULL,
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_campaign_responses_created ON campaign_responses(created_at)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.ExecContext(context.Background(), stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Version:     2,
			Description: "seed sample campaigns, contacts and events",
			Up:          seed,
		},
	}
}

func seed(tx *sql.Tx) error {
	ctx := context.Background()
	for i, c := range seedCampaigns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO campaign_campaigns (id, name, description, start_date, end_date, status, budget, target_audience)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			seedID("campaign", strconv.Itoa(i+1)), c.Name, c.Description, c.StartDate, c.EndDate,
			c.Status, c.Budget, c.TargetAudience,
		); err != nil {
			return err
		}
	}
	for i, c := range seedContacts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO campaign_contacts (id, name, email, phone, location, level)
			VALUES (?, ?, ?, ?, ?, ?)`,
			seedID("contact", strconv.Itoa(i+1)), c.Name, c.Email, c.Phone, c.Location, c.Level,
		); err != nil {
			return err
		}
	}
	for i, e := range seedEvents {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO campaign_events (id, title, date, time, location, type)
			VALUES (?, ?, ?, ?, ?, ?)`,
			seedID("event", strconv.Itoa(i+1)), e.Title, e.Date, e.Time, e.Location, e.Type,
		); err != nil {
			return err
		}
	}
	return nil
}

var seedCampaigns = []Campaign{
	{
		Name:           "Campanha Autárquicas 2025",
		Description:    "Campanha principal para eleições autárquicas focada em educação e segurança",
		StartDate:      "2024-11-01",
		EndDate:        "2025-03-15",
		Status:         StatusActive,
		Budget:         "50.000€",
		TargetAudience: "Residentes de Lisboa",
	},
	{
		Name:           "Campanha Digital Juventude",
		Description:    "Iniciativa digital para engajar jovens eleitores nas redes sociais",
		StartDate:      "2024-12-01",
		EndDate:        "2025-02-28",
		Status:         StatusActive,
		Budget:         "15.000€",
		TargetAudience: "Jovens 18-35 anos",
	},
	{
		Name:           "Campanha Porta a Porta",
		Description:    "Contacto direto com eleitores em bairros prioritários",
		StartDate:      "2025-01-15",
		EndDate:        "2025-03-01",
		Status:         StatusPlanned,
		Budget:         "8.000€",
		TargetAudience: "Famílias em zonas suburbanas",
	},
}

var seedContacts = []Contact{
	{Name: "João Silva", Email: "joao.silva@email.com", Phone: "+351 912 345 678", Location: "Lisboa", Level: LevelVolunteer},
	{Name: "Maria Santos", Email: "maria.santos@email.com", Phone: "+351 913 456 789", Location: "Porto", Level: LevelDonor},
	{Name: "Pedro Costa", Email: "pedro.costa@email.com", Phone: "+351 914 567 890", Location: "Coimbra", Level: LevelLeader},
	{Name: "Ana Rodrigues", Email: "ana.rodrigues@email.com", Phone: "+351 915 678 901", Location: "Braga", Level: LevelSupporter},
}

var seedEvents = []Event{
	{Title: "Comício Municipal", Date: "2024-12-15", Time: "18:00", Location: "Praça Central", Type: EventRally},
	{Title: "Reunião com Apoiadores", Date: "2024-12-18", Time: "16:00", Location: "Sede Local", Type: EventMeeting},
	{Title: "Porta a Porta - Bairro Norte", Date: "2024-12-20", Time: "10:00", Location: "Bairro Norte", Type: EventCanvassing},
}
