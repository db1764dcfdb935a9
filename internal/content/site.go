package content

import (
	"encoding/json"
	"time"
)

// Site section keys used by the per-section "more" blocks.
const (
	SectionTop       = "top"
	SectionRoutes    = "routes"
	SectionOperation = "operation"
	SectionTourism   = "tourism"
	SectionCorporate = "corporate"
)

// SiteSections lists the section keys in display order.
var SiteSections = []string{SectionTop, SectionRoutes, SectionOperation, SectionTourism, SectionCorporate}

// OperationNotice is a service-status line on the top page.
type OperationNotice struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewsItem is one announcement on the top page.
type NewsItem struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Date     time.Time `json:"date"`
	Category string    `json:"category"`
	Link     string    `json:"link"`
}

// TopSection is the landing-page content.
type TopSection struct {
	RouteMapEmbedURL string            `json:"routeMapEmbedUrl"`
	Operations       []OperationNotice `json:"operations"`
	News             []NewsItem        `json:"news"`
}

// Station is one stop on a route.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// RollingStock is one vehicle class assigned to a route.
type RollingStock struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PhotoURL  string `json:"photoUrl"`
	Formation string `json:"formation"`
}

// Route is one line with its stations and rolling stock.
type Route struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Color        string         `json:"color"`
	MapEmbedURL  string         `json:"mapEmbedUrl"`
	Stations     []Station      `json:"stations"`
	RollingStock []RollingStock `json:"rollingStock"`
}

// ScheduleEntry is one row in the operation-info timetable.
type ScheduleEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Note      string `json:"note"`
	TimeRange string `json:"timeRange"`
}

// OfficialFeed is the embedded official social feed reference.
type OfficialFeed struct {
	Handle   string `json:"handle"`
	EmbedURL string `json:"embedUrl"`
}

// OperationSection holds the operation-info page content.
type OperationSection struct {
	Schedule  []ScheduleEntry `json:"schedule"`
	OfficialX OfficialFeed    `json:"officialX"`
}

// Spot is one sightseeing location.
type Spot struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PhotoURL    string `json:"photoUrl"`
	NearStation string `json:"nearStation"`
}

// Event is one scheduled happening along the line.
type Event struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Info  string    `json:"info"`
}

// GalleryEntry is one photo in the tourism gallery.
type GalleryEntry struct {
	ID       string `json:"id"`
	PhotoURL string `json:"photoUrl"`
	Caption  string `json:"caption"`
}

// TourismSection holds the tourism page content.
type TourismSection struct {
	Spots   []Spot         `json:"spots"`
	Events  []Event        `json:"events"`
	Gallery []GalleryEntry `json:"gallery"`
}

// Company is the corporate identity block.
type Company struct {
	Name     string `json:"name"`
	Overview string `json:"overview"`
	Address  string `json:"address"`
	Website  string `json:"website"`
}

// Career is one open position.
type Career struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Link     string `json:"link"`
}

// PressRelease is one corporate announcement.
type PressRelease struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Link  string    `json:"link"`
}

// Note is a titled description used for CSR and safety items.
type Note struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CorporateSection holds the corporate page content.
type CorporateSection struct {
	Company Company        `json:"company"`
	Careers []Career       `json:"careers"`
	Press   []PressRelease `json:"press"`
	CSR     []Note         `json:"csr"`
	Safety  []Note         `json:"safety"`
}

// MoreMedia is one entry in a "more" block's ordered media list.
type MoreMedia struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	URL     string `json:"url"`
	DataURL string `json:"dataUrl"`
	Caption string `json:"caption"`
}

// MoreBlock is the free-form expandable block attached to each section.
type MoreBlock struct {
	Enabled     bool        `json:"enabled"`
	Label       string      `json:"label"`
	ContentText string      `json:"contentText"`
	Media       []MoreMedia `json:"media"`
}

// LogEntry is one record in the append-only operation log, newest first.
type LogEntry struct {
	ID     string            `json:"id"`
	Action string            `json:"action"`
	Meta   map[string]string `json:"meta"`
	At     time.Time         `json:"at"`
}

// SiteContent is the singleton aggregate for the official site. It is never
// created or destroyed, only patched.
type SiteContent struct {
	CustomCSS     string               `json:"customCSS"`
	CustomHTML    string               `json:"customHTML"`
	CustomJS      string               `json:"customJS"`
	Top           TopSection           `json:"top"`
	Routes        []Route              `json:"routes"`
	OperationInfo OperationSection     `json:"operationInfo"`
	Tourism       TourismSection       `json:"tourism"`
	Corporate     CorporateSection     `json:"corporate"`
	More          map[string]MoreBlock `json:"more"`
	Logs          []LogEntry           `json:"logs"`
}

func defaultMoreBlocks() map[string]MoreBlock {
	more := make(map[string]MoreBlock, len(SiteSections))
	for _, section := range SiteSections {
		more[section] = MoreBlock{Label: "Read more", Media: []MoreMedia{}}
	}
	return more
}

// SampleSiteContent is the documented default used when the durable slot is
// absent or unreadable.
func SampleSiteContent(now time.Time) SiteContent {
	return SiteContent{
		Top: TopSection{
			Operations: []OperationNotice{
				{ID: "op1", Status: "Normal service", Message: "All lines are currently running on schedule.", UpdatedAt: now},
			},
			News: []NewsItem{
				{ID: "n1", Title: "New rolling stock debut", Body: "New vehicles enter service this spring.", Date: now, Category: "Fleet"},
			},
		},
		Routes: []Route{
			{
				ID: "line1", Name: "Main Line", Color: "#2a7cff",
				Stations:     []Station{{ID: "s1", Name: "Central", Code: "C01"}, {ID: "s2", Name: "East", Code: "E03"}},
				RollingStock: []RollingStock{{ID: "rs1", Name: "Series 1000", Formation: "4-car set"}},
			},
		},
		OperationInfo: OperationSection{
			Schedule:  []ScheduleEntry{{ID: "sc1", Title: "Today's timetable", Note: "Regular timetable", TimeRange: "05:00 - 24:00"}},
			OfficialX: OfficialFeed{Handle: "official_x"},
		},
		Tourism: TourismSection{
			Spots:   []Spot{{ID: "t1", Title: "Central Park", Description: "A large park next to the station", NearStation: "Central"}},
			Events:  []Event{{ID: "e1", Title: "Lineside festival", Date: now, Info: "Held on weekends"}},
			Gallery: []GalleryEntry{{ID: "g1", Caption: "Spring along the line"}},
		},
		Corporate: CorporateSection{
			Company: Company{Name: "Sample Railway Co.", Overview: "A railway company rooted in the region.", Address: "1-1 Example City"},
			Careers: []Career{{ID: "c1", Title: "Rolling stock engineer", Location: "Head office"}},
			Press:   []PressRelease{{ID: "p1", Title: "Timetable revision notice", Date: now}},
			CSR:     []Note{{ID: "csr1", Title: "Environmental work", Description: "Regular lineside clean-ups"}},
			Safety:  []Note{{ID: "sf1", Title: "Safety initiatives", Description: "Recurring drills"}},
		},
		More: defaultMoreBlocks(),
		Logs: []LogEntry{},
	}
}

// DecodeSiteContent parses a site-content object over the sample defaults so
// a partial or old shape is backfilled. The boolean reports whether the
// payload was a usable object.
func DecodeSiteContent(raw []byte, now time.Time) (SiteContent, bool) {
	site := SampleSiteContent(now)
	if err := json.Unmarshal(raw, &site); err != nil {
		return SiteContent{}, false
	}
	if site.More == nil {
		site.More = defaultMoreBlocks()
	}
	if site.Logs == nil {
		site.Logs = []LogEntry{}
	}
	return site, true
}

func patchByID[T any](list []T, id string, getID func(T) string, apply func(T) T) []T {
	out := copyList(list)
	for i, item := range out {
		if getID(item) == id {
			out[i] = apply(item)
		}
	}
	return out
}

func removeByID[T any](list []T, id string, getID func(T) string) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if getID(item) == id {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Top section operations.

func (s SiteContent) AddOperation(notice OperationNotice) SiteContent {
	s.Top.Operations = append(copyList(s.Top.Operations), notice)
	return s
}

func (s SiteContent) UpdateOperation(id string, apply func(OperationNotice) OperationNotice) SiteContent {
	s.Top.Operations = patchByID(s.Top.Operations, id, func(o OperationNotice) string { return o.ID }, apply)
	return s
}

func (s SiteContent) RemoveOperation(id string) SiteContent {
	s.Top.Operations = removeByID(s.Top.Operations, id, func(o OperationNotice) string { return o.ID })
	return s
}

func (s SiteContent) AddNews(item NewsItem) SiteContent {
	s.Top.News = append(copyList(s.Top.News), item)
	return s
}

func (s SiteContent) UpdateNews(id string, apply func(NewsItem) NewsItem) SiteContent {
	s.Top.News = patchByID(s.Top.News, id, func(n NewsItem) string { return n.ID }, apply)
	return s
}

func (s SiteContent) RemoveNews(id string) SiteContent {
	s.Top.News = removeByID(s.Top.News, id, func(n NewsItem) string { return n.ID })
	return s
}

// Route operations.

func (s SiteContent) AddRoute(route Route) SiteContent {
	s.Routes = append(copyList(s.Routes), route)
	return s
}

func (s SiteContent) UpdateRoute(id string, apply func(Route) Route) SiteContent {
	s.Routes = patchByID(s.Routes, id, func(r Route) string { return r.ID }, apply)
	return s
}

func (s SiteContent) RemoveRoute(id string) SiteContent {
	s.Routes = removeByID(s.Routes, id, func(r Route) string { return r.ID })
	return s
}

func (s SiteContent) AddStation(routeID string, station Station) SiteContent {
	return s.UpdateRoute(routeID, func(r Route) Route {
		r.Stations = append(copyList(r.Stations), station)
		return r
	})
}

func (s SiteContent) UpdateStation(routeID, stationID string, apply func(Station) Station) SiteContent {
	return s.UpdateRoute(routeID, func(r Route) Route {
		r.Stations = patchByID(r.Stations, stationID, func(st Station) string { return st.ID }, apply)
		return r
	})
}

func (s SiteContent) RemoveStation(routeID, stationID string) SiteContent {
	return s.UpdateRoute(routeID, func(r Route) Route {
		r.Stations = removeByID(r.Stations, stationID, func(st Station) string { return st.ID })
		return r
	})
}

func (s SiteContent) AddRollingStock(routeID string, stock RollingStock) SiteContent {
	return s.UpdateRoute(routeID, func(r Route) Route {
		r.RollingStock = append(copyList(r.RollingStock), stock)
		return r
	})
}

func (s SiteContent) UpdateRollingStock(routeID, stockID string, apply func(RollingStock) RollingStock) SiteContent {
	return s.UpdateRoute(routeID, func(r Route) Route {
		r.RollingStock = patchByID(r.RollingStock, stockID, func(rs RollingStock) string { return rs.ID }, apply)
		return r
	})
}

func (s SiteContent) RemoveRollingStock(routeID, stockID string) SiteContent {
	return s.UpdateRoute(routeID, func(r Route) Route {
		r.RollingStock = removeByID(r.RollingStock, stockID, func(rs RollingStock) string { return rs.ID })
		return r
	})
}

// Operation-info operations.

func (s SiteContent) AddSchedule(entry ScheduleEntry) SiteContent {
	s.OperationInfo.Schedule = append(copyList(s.OperationInfo.Schedule), entry)
	return s
}

func (s SiteContent) UpdateSchedule(id string, apply func(ScheduleEntry) ScheduleEntry) SiteContent {
	s.OperationInfo.Schedule = patchByID(s.OperationInfo.Schedule, id, func(e ScheduleEntry) string { return e.ID }, apply)
	return s
}

func (s SiteContent) RemoveSchedule(id string) SiteContent {
	s.OperationInfo.Schedule = removeByID(s.OperationInfo.Schedule, id, func(e ScheduleEntry) string { return e.ID })
	return s
}

// Tourism operations.

func (s SiteContent) AddSpot(spot Spot) SiteContent {
	s.Tourism.Spots = append(copyList(s.Tourism.Spots), spot)
	return s
}

func (s SiteContent) UpdateSpot(id string, apply func(Spot) Spot) SiteContent {
	s.Tourism.Spots = patchByID(s.Tourism.Spots, id, func(sp Spot) string { return sp.ID }, apply)
	return s
}

func (s SiteContent) RemoveSpot(id string) SiteContent {
	s.Tourism.Spots = removeByID(s.Tourism.Spots, id, func(sp Spot) string { return sp.ID })
	return s
}

func (s SiteContent) AddEvent(event Event) SiteContent {
	s.Tourism.Events = append(copyList(s.Tourism.Events), event)
	return s
}

func (s SiteContent) UpdateEvent(id string, apply func(Event) Event) SiteContent {
	s.Tourism.Events = patchByID(s.Tourism.Events, id, func(e Event) string { return e.ID }, apply)
	return s
}

func (s SiteContent) RemoveEvent(id string) SiteContent {
	s.Tourism.Events = removeByID(s.Tourism.Events, id, func(e Event) string { return e.ID })
	return s
}

func (s SiteContent) AddGallery(entry GalleryEntry) SiteContent {
	s.Tourism.Gallery = append(copyList(s.Tourism.Gallery), entry)
	return s
}

func (s SiteContent) UpdateGallery(id string, apply func(GalleryEntry) GalleryEntry) SiteContent {
	s.Tourism.Gallery = patchByID(s.Tourism.Gallery, id, func(g GalleryEntry) string { return g.ID }, apply)
	return s
}

func (s SiteContent) RemoveGallery(id string) SiteContent {
	s.Tourism.Gallery = removeByID(s.Tourism.Gallery, id, func(g GalleryEntry) string { return g.ID })
	return s
}

// Corporate operations.

func (s SiteContent) SetCompany(company Company) SiteContent {
	s.Corporate.Company = company
	return s
}

func (s SiteContent) AddCareer(career Career) SiteContent {
	s.Corporate.Careers = append(copyList(s.Corporate.Careers), career)
	return s
}

func (s SiteContent) UpdateCareer(id string, apply func(Career) Career) SiteContent {
	s.Corporate.Careers = patchByID(s.Corporate.Careers, id, func(c Career) string { return c.ID }, apply)
	return s
}

func (s SiteContent) RemoveCareer(id string) SiteContent {
	s.Corporate.Careers = removeByID(s.Corporate.Careers, id, func(c Career) string { return c.ID })
	return s
}

func (s SiteContent) AddPress(press PressRelease) SiteContent {
	s.Corporate.Press = append(copyList(s.Corporate.Press), press)
	return s
}

func (s SiteContent) UpdatePress(id string, apply func(PressRelease) PressRelease) SiteContent {
	s.Corporate.Press = patchByID(s.Corporate.Press, id, func(p PressRelease) string { return p.ID }, apply)
	return s
}

func (s SiteContent) RemovePress(id string) SiteContent {
	s.Corporate.Press = removeByID(s.Corporate.Press, id, func(p PressRelease) string { return p.ID })
	return s
}

func (s SiteContent) AddCSR(note Note) SiteContent {
	s.Corporate.CSR = append(copyList(s.Corporate.CSR), note)
	return s
}

func (s SiteContent) UpdateCSR(id string, apply func(Note) Note) SiteContent {
	s.Corporate.CSR = patchByID(s.Corporate.CSR, id, func(n Note) string { return n.ID }, apply)
	return s
}

func (s SiteContent) RemoveCSR(id string) SiteContent {
	s.Corporate.CSR = removeByID(s.Corporate.CSR, id, func(n Note) string { return n.ID })
	return s
}

func (s SiteContent) AddSafety(note Note) SiteContent {
	s.Corporate.Safety = append(copyList(s.Corporate.Safety), note)
	return s
}

func (s SiteContent) UpdateSafety(id string, apply func(Note) Note) SiteContent {
	s.Corporate.Safety = patchByID(s.Corporate.Safety, id, func(n Note) string { return n.ID }, apply)
	return s
}

func (s SiteContent) RemoveSafety(id string) SiteContent {
	s.Corporate.Safety = removeByID(s.Corporate.Safety, id, func(n Note) string { return n.ID })
	return s
}

// More blocks.

func (s SiteContent) withMore(section string, apply func(MoreBlock) MoreBlock) SiteContent {
	block, ok := s.More[section]
	if !ok {
		return s
	}
	more := make(map[string]MoreBlock, len(s.More))
	for key, value := range s.More {
		more[key] = value
	}
	more[section] = apply(block)
	s.More = more
	return s
}

func (s SiteContent) SetMoreEnabled(section string, enabled bool) SiteContent {
	return s.withMore(section, func(b MoreBlock) MoreBlock { b.Enabled = enabled; return b })
}

func (s SiteContent) SetMoreLabel(section, label string) SiteContent {
	return s.withMore(section, func(b MoreBlock) MoreBlock { b.Label = label; return b })
}

func (s SiteContent) SetMoreText(section, text string) SiteContent {
	return s.withMore(section, func(b MoreBlock) MoreBlock { b.ContentText = text; return b })
}

func (s SiteContent) AddMoreMedia(section string, items []MoreMedia) SiteContent {
	return s.withMore(section, func(b MoreBlock) MoreBlock {
		b.Media = append(copyList(b.Media), items...)
		return b
	})
}

func (s SiteContent) UpdateMoreMedia(section, id string, apply func(MoreMedia) MoreMedia) SiteContent {
	return s.withMore(section, func(b MoreBlock) MoreBlock {
		b.Media = patchByID(b.Media, id, func(m MoreMedia) string { return m.ID }, apply)
		return b
	})
}

func (s SiteContent) RemoveMoreMedia(section, id string) SiteContent {
	return s.withMore(section, func(b MoreBlock) MoreBlock {
		b.Media = removeByID(b.Media, id, func(m MoreMedia) string { return m.ID })
		return b
	})
}

// ReorderMoreMedia moves the media entry at fromIndex to toIndex within a
// section's media list. Out-of-range indices are ignored.
func (s SiteContent) ReorderMoreMedia(section string, fromIndex, toIndex int) SiteContent {
	return s.withMore(section, func(b MoreBlock) MoreBlock {
		if fromIndex < 0 || fromIndex >= len(b.Media) || toIndex < 0 || toIndex >= len(b.Media) {
			return b
		}
		media := copyList(b.Media)
		moved := media[fromIndex]
		media = append(media[:fromIndex], media[fromIndex+1:]...)
		rest := make([]MoreMedia, 0, len(media)+1)
		rest = append(rest, media[:toIndex]...)
		rest = append(rest, moved)
		rest = append(rest, media[toIndex:]...)
		b.Media = rest
		return b
	})
}

// AppendLog prepends an operation-log entry; the log is append-only and kept
// newest first.
func (s SiteContent) AppendLog(entry LogEntry) SiteContent {
	logs := make([]LogEntry, 0, len(s.Logs)+1)
	logs = append(logs, entry)
	logs = append(logs, s.Logs...)
	s.Logs = logs
	return s
}
