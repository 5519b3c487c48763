package intel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cyguard-backend/internal/database"
	"cyguard-backend/pkg/api"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrInvalidFilter wraps filter parse failures so callers can map them to a 400.
var ErrInvalidFilter = errors.New("invalid filter")

// Service serves the threat intelligence feed. The feed itself is fixture-fed;
// a real deployment would sync alerts from external advisories.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns alerts newest first, optionally narrowed by a filter query.
func (s *Service) List(ctx context.Context, filterQuery string) (*api.GetIntelAlertsResponse, error) {
	var filter Filter
	if filterQuery != "" {
		parsed, err := ParseQuery(filterQuery)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		filter = parsed
	}

	var rows []database.IntelAlert
	if err := s.db.WithContext(ctx).Order("date DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list intel alerts: %w", err)
	}

	alerts := make([]api.IntelAlert, 0, len(rows))
	for _, row := range rows {
		var tags []string
		if len(row.Tags) > 0 {
			if err := json.Unmarshal(row.Tags, &tags); err != nil {
				slog.Error("skipping alert with corrupt tags", "alert_id", row.Id, "error", err)
				continue
			}
		}
		alert := api.IntelAlert{
			ID:       row.Id.String(),
			Title:    row.Title,
			Summary:  row.Summary,
			Date:     row.Date.UTC().Format(time.RFC3339),
			Severity: row.Severity,
			Source:   row.Source,
			Link:     row.Link,
			Tags:     tags,
		}
		if filter != nil && !filter.Matches(alert) {
			continue
		}
		alerts = append(alerts, alert)
	}

	return &api.GetIntelAlertsResponse{Alerts: alerts}, nil
}

// SeedFixtures loads the demo alert feed. Idempotent: it only seeds an empty
// table.
func SeedFixtures(db *gorm.DB) error {
	var count int64
	if err := db.Model(&database.IntelAlert{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count intel alerts: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	alerts := []database.IntelAlert{
		{
			Id:       uuid.New(),
			Title:    "Critical RCE Vulnerability in Apache Struts (CVE-2023-XXXX)",
			Summary:  "A new remote code execution vulnerability has been discovered in Apache Struts. Systems are at high risk. Immediate patching is required.",
			Date:     now.AddDate(0, 0, -1),
			Severity: api.SeverityCritical,
			Source:   "NVD",
			Link:     "https://nvd.nist.gov/",
			Tags:     mustJSON([]string{"rce", "apache", "vulnerability"}),
		},
		{
			Id:       uuid.New(),
			Title:    "Phishing Campaign Impersonating Microsoft 365 Login",
			Summary:  "Ongoing phishing campaign targeting corporate users by mimicking Microsoft 365 login pages to steal credentials. Advise users to be vigilant.",
			Date:     now.AddDate(0, 0, -2),
			Severity: api.SeverityHigh,
			Source:   "CyGuard Labs",
			Tags:     mustJSON([]string{"phishing", "microsoft365", "credentials"}),
		},
		{
			Id:       uuid.New(),
			Title:    "Increase in DDoS Attacks Targeting E-commerce",
			Summary:  "Observed an uptick in Distributed Denial of Service (DDoS) attacks against e-commerce platforms. Review DDoS mitigation strategies.",
			Date:     now.AddDate(0, 0, -3),
			Severity: api.SeverityMedium,
			Source:   "Cloudflare Threat Report",
			Link:     "https://www.cloudflare.com/learning/ddos/what-is-a-ddos-attack/",
			Tags:     mustJSON([]string{"ddos", "e-commerce"}),
		},
		{
			Id:       uuid.New(),
			Title:    "Malware Found in Popular Open-Source Library",
			Summary:  "A compromised version of the 'example-utils' library was found on NPM, containing data-stealing malware. Check dependencies and update if necessary.",
			Date:     now.AddDate(0, 0, -5),
			Severity: api.SeverityHigh,
			Source:   "Snyk Security",
			Tags:     mustJSON([]string{"malware", "supply-chain", "npm"}),
		},
		{
			Id:       uuid.New(),
			Title:    "Routine Security Advisory: Update Your Browsers",
			Summary:  "Major browser vendors have released updates addressing several low to medium severity vulnerabilities. Ensure all browsers are updated to the latest versions.",
			Date:     now.AddDate(0, 0, -7),
			Severity: api.SeverityLow,
			Source:   "Vendor Advisories",
			Tags:     mustJSON([]string{"browser", "update", "patch"}),
		},
	}

	if err := db.Create(&alerts).Error; err != nil {
		return fmt.Errorf("seed intel alerts: %w", err)
	}
	return nil
}

func mustJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(data)
}
