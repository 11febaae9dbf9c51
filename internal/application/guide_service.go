package application

import (
	"fmt"
	"io"
	"strconv"

	"github.com/lanecast/lanecast/internal/lane"
	"github.com/lanecast/lanecast/internal/m3u"
	"github.com/lanecast/lanecast/internal/xmltv"
)

// epgPrefix namespaces lane channel IDs in guide output.
const epgPrefix = "lane."

// GuideService renders the published schedule as XMLTV and M3U for
// external guide consumers.
type GuideService struct {
	schedule *ScheduleService
	// serverURL is the externally reachable base URL used for playback
	// entries in playlists, without trailing slash.
	serverURL string
}

// NewGuideService creates a new guide rendering service.
func NewGuideService(schedule *ScheduleService, serverURL string) *GuideService {
	return &GuideService{
		schedule:  schedule,
		serverURL: serverURL,
	}
}

// WriteXMLTV renders the whole schedule as an XMLTV document. Both real
// and placeholder slots are rendered, so every instant of the window is
// covered in the guide.
func (s *GuideService) WriteXMLTV(w io.Writer) error {
	schedule, err := s.schedule.Current()
	if err != nil {
		return err
	}

	tv := &xmltv.TV{GeneratorName: "lanecast"}
	for _, l := range schedule.Lanes() {
		tv.Channels = append(tv.Channels, xmltv.Channel{
			ID:          channelID(l),
			DisplayName: []string{l.Name},
			LCN:         strconv.Itoa(l.Number),
		})

		for _, slot := range schedule.Slots(l.ID) {
			prog := xmltv.Programme{
				Start:   xmltv.FormatTime(slot.Start),
				Stop:    xmltv.FormatTime(slot.End),
				Channel: channelID(l),
				Title:   slot.Title,
			}
			if slot.Placeholder {
				prog.Category = []string{"Filler"}
			} else {
				prog.Category = []string{"Sports"}
			}
			tv.Programmes = append(tv.Programmes, prog)
		}
	}

	return tv.Encode(w)
}

// WriteM3U renders the lanes as an M3U playlist whose entries punch
// through this server's lane play redirect.
func (s *GuideService) WriteM3U(w io.Writer) error {
	schedule, err := s.schedule.Current()
	if err != nil {
		return err
	}

	enc := m3u.NewEncoder([]string{s.serverURL + "/guide.xml"})
	for _, l := range schedule.Lanes() {
		enc.AddChannel(&m3u.Channel{
			Title:    l.Name,
			URI:      fmt.Sprintf("%s/lanes/%d/play", s.serverURL, l.ID),
			Duration: -1,
			TVGTags: &m3u.TVGTags{
				ID:         channelID(l),
				Name:       l.Name,
				ChNo:       l.Number,
				GroupTitle: "Sports",
			},
		})
	}

	return enc.Encode(w)
}

func channelID(l lane.Lane) string {
	return fmt.Sprintf("%s%d", epgPrefix, l.ID)
}
