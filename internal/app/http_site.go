package app

import (
	"net/http"

	"folio/internal/content"
	"folio/internal/util"
)

// handleSite routes the official-site editing surface. Every mutation goes
// through Service.UpdateSite so it lands in the operation log.
func (s *HTTPServer) handleSite(w http.ResponseWriter, r *http.Request, rest []string) {
	if r.Method == http.MethodGet && len(rest) == 0 {
		writeJSON(w, http.StatusOK, s.service.Site())
		return
	}
	if r.Method == http.MethodGet && len(rest) == 1 && rest[0] == "logs" {
		writeJSON(w, http.StatusOK, map[string]any{"logs": s.service.Site().Logs})
		return
	}
	if len(rest) == 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch rest[0] {
	case "custom":
		s.handleSiteCustom(w, r, rest[1:])
	case "top":
		s.handleSiteTop(w, r, rest[1:])
	case "company":
		if r.Method == http.MethodPatch && len(rest) == 1 {
			var company content.Company
			if err := decodeBody(r, &company); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			writeJSON(w, http.StatusOK, s.service.UpdateSite("company.update", nil,
				func(site content.SiteContent) content.SiteContent { return site.SetCompany(company) }))
			return
		}
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	case "official-x":
		if r.Method == http.MethodPatch && len(rest) == 1 {
			var feed content.OfficialFeed
			if err := decodeBody(r, &feed); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			writeJSON(w, http.StatusOK, s.service.UpdateSite("officialx.update", nil,
				func(site content.SiteContent) content.SiteContent {
					site.OperationInfo.OfficialX = feed
					return site
				}))
			return
		}
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	case "operations":
		handleSiteEntity(s, w, r, rest[1:], "operations", "op",
			func(v content.OperationNotice) string { return v.ID },
			func(v content.OperationNotice, id string) content.OperationNotice { v.ID = id; return v },
			func(v content.OperationNotice) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddOperation(v) }
			},
			func(id string, v content.OperationNotice) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateOperation(id, func(content.OperationNotice) content.OperationNotice { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveOperation(id) }
			})
	case "news":
		handleSiteEntity(s, w, r, rest[1:], "news", "news",
			func(v content.NewsItem) string { return v.ID },
			func(v content.NewsItem, id string) content.NewsItem { v.ID = id; return v },
			func(v content.NewsItem) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddNews(v) }
			},
			func(id string, v content.NewsItem) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateNews(id, func(content.NewsItem) content.NewsItem { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveNews(id) }
			})
	case "routes":
		s.handleSiteRoutes(w, r, rest[1:])
	case "schedule":
		handleSiteEntity(s, w, r, rest[1:], "schedule", "sched",
			func(v content.ScheduleEntry) string { return v.ID },
			func(v content.ScheduleEntry, id string) content.ScheduleEntry { v.ID = id; return v },
			func(v content.ScheduleEntry) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddSchedule(v) }
			},
			func(id string, v content.ScheduleEntry) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateSchedule(id, func(content.ScheduleEntry) content.ScheduleEntry { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveSchedule(id) }
			})
	case "spots":
		handleSiteEntity(s, w, r, rest[1:], "spots", "spot",
			func(v content.Spot) string { return v.ID },
			func(v content.Spot, id string) content.Spot { v.ID = id; return v },
			func(v content.Spot) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddSpot(v) }
			},
			func(id string, v content.Spot) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateSpot(id, func(content.Spot) content.Spot { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveSpot(id) }
			})
	case "events":
		handleSiteEntity(s, w, r, rest[1:], "events", "event",
			func(v content.Event) string { return v.ID },
			func(v content.Event, id string) content.Event { v.ID = id; return v },
			func(v content.Event) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddEvent(v) }
			},
			func(id string, v content.Event) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateEvent(id, func(content.Event) content.Event { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveEvent(id) }
			})
	case "gallery":
		handleSiteEntity(s, w, r, rest[1:], "gallery", "photo",
			func(v content.GalleryEntry) string { return v.ID },
			func(v content.GalleryEntry, id string) content.GalleryEntry { v.ID = id; return v },
			func(v content.GalleryEntry) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddGallery(v) }
			},
			func(id string, v content.GalleryEntry) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateGallery(id, func(content.GalleryEntry) content.GalleryEntry { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveGallery(id) }
			})
	case "careers":
		handleSiteEntity(s, w, r, rest[1:], "careers", "career",
			func(v content.Career) string { return v.ID },
			func(v content.Career, id string) content.Career { v.ID = id; return v },
			func(v content.Career) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddCareer(v) }
			},
			func(id string, v content.Career) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateCareer(id, func(content.Career) content.Career { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveCareer(id) }
			})
	case "press":
		handleSiteEntity(s, w, r, rest[1:], "press", "press",
			func(v content.PressRelease) string { return v.ID },
			func(v content.PressRelease, id string) content.PressRelease { v.ID = id; return v },
			func(v content.PressRelease) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddPress(v) }
			},
			func(id string, v content.PressRelease) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdatePress(id, func(content.PressRelease) content.PressRelease { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemovePress(id) }
			})
	case "csr":
		handleSiteEntity(s, w, r, rest[1:], "csr", "csr",
			func(v content.Note) string { return v.ID },
			func(v content.Note, id string) content.Note { v.ID = id; return v },
			func(v content.Note) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddCSR(v) }
			},
			func(id string, v content.Note) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateCSR(id, func(content.Note) content.Note { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveCSR(id) }
			})
	case "safety":
		handleSiteEntity(s, w, r, rest[1:], "safety", "safety",
			func(v content.Note) string { return v.ID },
			func(v content.Note, id string) content.Note { v.ID = id; return v },
			func(v content.Note) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddSafety(v) }
			},
			func(id string, v content.Note) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateSafety(id, func(content.Note) content.Note { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveSafety(id) }
			})
	case "more":
		s.handleSiteMore(w, r, rest[1:])
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

type siteApply = func(content.SiteContent) content.SiteContent

// handleSiteEntity serves the add/update/remove triad shared by the flat
// site entity lists. Updates replace the whole entity, keeping the path id.
func handleSiteEntity[T any](s *HTTPServer, w http.ResponseWriter, r *http.Request, rest []string, name, idPrefix string,
	getID func(T) string,
	setID func(T, string) T,
	add func(T) siteApply,
	update func(string, T) siteApply,
	remove func(string) siteApply,
) {
	switch {
	case r.Method == http.MethodPost && len(rest) == 0:
		var item T
		if err := decodeBody(r, &item); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if getID(item) == "" {
			item = setID(item, util.NewID(idPrefix))
		}
		site := s.service.UpdateSite(name+".add", map[string]string{"id": getID(item)}, add(item))
		writeJSON(w, http.StatusOK, site)
	case r.Method == http.MethodPatch && len(rest) == 1:
		var item T
		if err := decodeBody(r, &item); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		item = setID(item, rest[0])
		site := s.service.UpdateSite(name+".update", map[string]string{"id": rest[0]}, update(rest[0], item))
		writeJSON(w, http.StatusOK, site)
	case r.Method == http.MethodDelete && len(rest) == 1:
		site := s.service.UpdateSite(name+".remove", map[string]string{"id": rest[0]}, remove(rest[0]))
		writeJSON(w, http.StatusOK, site)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleSiteCustom(w http.ResponseWriter, r *http.Request, rest []string) {
	if r.Method != http.MethodPatch || len(rest) != 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	var body struct {
		CustomCSS  *string `json:"customCSS"`
		CustomHTML *string `json:"customHTML"`
		CustomJS   *string `json:"customJS"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, s.service.UpdateSite("custom.update", nil,
		func(site content.SiteContent) content.SiteContent {
			if body.CustomCSS != nil {
				site.CustomCSS = *body.CustomCSS
			}
			if body.CustomHTML != nil {
				site.CustomHTML = *body.CustomHTML
			}
			if body.CustomJS != nil {
				site.CustomJS = *body.CustomJS
			}
			return site
		}))
}

func (s *HTTPServer) handleSiteTop(w http.ResponseWriter, r *http.Request, rest []string) {
	if r.Method != http.MethodPatch || len(rest) != 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	var body struct {
		RouteMapEmbedURL *string `json:"routeMapEmbedUrl"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, s.service.UpdateSite("top.update", nil,
		func(site content.SiteContent) content.SiteContent {
			if body.RouteMapEmbedURL != nil {
				site.Top.RouteMapEmbedURL = *body.RouteMapEmbedURL
			}
			return site
		}))
}

// handleSiteRoutes serves routes and their nested stations and rolling
// stock: /site/routes[/{id}[/stations|stock[/{subID}]]].
func (s *HTTPServer) handleSiteRoutes(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) >= 2 && rest[1] == "stations" {
		routeID := rest[0]
		handleSiteEntity(s, w, r, rest[2:], "stations", "st",
			func(v content.Station) string { return v.ID },
			func(v content.Station, id string) content.Station { v.ID = id; return v },
			func(v content.Station) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddStation(routeID, v) }
			},
			func(id string, v content.Station) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateStation(routeID, id, func(content.Station) content.Station { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveStation(routeID, id) }
			})
		return
	}
	if len(rest) >= 2 && rest[1] == "stock" {
		routeID := rest[0]
		handleSiteEntity(s, w, r, rest[2:], "stock", "rs",
			func(v content.RollingStock) string { return v.ID },
			func(v content.RollingStock, id string) content.RollingStock { v.ID = id; return v },
			func(v content.RollingStock) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.AddRollingStock(routeID, v) }
			},
			func(id string, v content.RollingStock) siteApply {
				return func(site content.SiteContent) content.SiteContent {
					return site.UpdateRollingStock(routeID, id, func(content.RollingStock) content.RollingStock { return v })
				}
			},
			func(id string) siteApply {
				return func(site content.SiteContent) content.SiteContent { return site.RemoveRollingStock(routeID, id) }
			})
		return
	}
	handleSiteEntity(s, w, r, rest, "routes", "line",
		func(v content.Route) string { return v.ID },
		func(v content.Route, id string) content.Route { v.ID = id; return v },
		func(v content.Route) siteApply {
			return func(site content.SiteContent) content.SiteContent { return site.AddRoute(v) }
		},
		func(id string, v content.Route) siteApply {
			return func(site content.SiteContent) content.SiteContent {
				return site.UpdateRoute(id, func(content.Route) content.Route { return v })
			}
		},
		func(id string) siteApply {
			return func(site content.SiteContent) content.SiteContent { return site.RemoveRoute(id) }
		})
}

// handleSiteMore serves the per-section "more" blocks:
// /site/more/{section}[/media[/{id}|/reorder]].
func (s *HTTPServer) handleSiteMore(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) == 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	section := rest[0]
	rest = rest[1:]

	switch {
	case r.Method == http.MethodPatch && len(rest) == 0:
		var body struct {
			Enabled     *bool   `json:"enabled"`
			Label       *string `json:"label"`
			ContentText *string `json:"contentText"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, s.service.UpdateSite("more.update", map[string]string{"section": section},
			func(site content.SiteContent) content.SiteContent {
				if body.Enabled != nil {
					site = site.SetMoreEnabled(section, *body.Enabled)
				}
				if body.Label != nil {
					site = site.SetMoreLabel(section, *body.Label)
				}
				if body.ContentText != nil {
					site = site.SetMoreText(section, *body.ContentText)
				}
				return site
			}))
	case r.Method == http.MethodPost && len(rest) == 1 && rest[0] == "media":
		var items []content.MoreMedia
		if err := decodeBody(r, &items); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		for i := range items {
			if items[i].ID == "" {
				items[i].ID = util.NewID("media")
			}
		}
		writeJSON(w, http.StatusOK, s.service.UpdateSite("more.media.add", map[string]string{"section": section},
			func(site content.SiteContent) content.SiteContent { return site.AddMoreMedia(section, items) }))
	case r.Method == http.MethodPost && len(rest) == 2 && rest[0] == "media" && rest[1] == "reorder":
		var body struct {
			From int `json:"from"`
			To   int `json:"to"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, s.service.UpdateSite("more.media.reorder", map[string]string{"section": section},
			func(site content.SiteContent) content.SiteContent {
				return site.ReorderMoreMedia(section, body.From, body.To)
			}))
	case r.Method == http.MethodPatch && len(rest) == 2 && rest[0] == "media":
		var item content.MoreMedia
		if err := decodeBody(r, &item); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		id := rest[1]
		item.ID = id
		writeJSON(w, http.StatusOK, s.service.UpdateSite("more.media.update", map[string]string{"section": section, "id": id},
			func(site content.SiteContent) content.SiteContent {
				return site.UpdateMoreMedia(section, id, func(content.MoreMedia) content.MoreMedia { return item })
			}))
	case r.Method == http.MethodDelete && len(rest) == 2 && rest[0] == "media":
		writeJSON(w, http.StatusOK, s.service.UpdateSite("more.media.remove", map[string]string{"section": section, "id": rest[1]},
			func(site content.SiteContent) content.SiteContent { return site.RemoveMoreMedia(section, rest[1]) }))
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}
