package factories

import (
	"fmt"
	"strings"

	"github.com/jaswdr/faker"
)

type ZoneFactory struct {
	fake faker.Faker
}

func NewZoneFactory(fake faker.Faker) *ZoneFactory {
	return &ZoneFactory{fake: fake}
}

// CreateZones returns n distinct zone names. Commas are stripped since they
// delimit record fields.
func (zf *ZoneFactory) CreateZones(n int) []string {
	seen := make(map[string]bool, n)
	zones := make([]string, 0, n)
	for len(zones) < n {
		name := strings.ReplaceAll(zf.fake.Address().City(), ",", "")
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			name = fmt.Sprintf("Zone-%03d", len(zones)+1)
			if seen[name] {
				continue
			}
		}
		seen[name] = true
		zones = append(zones, name)
	}
	return zones
}
