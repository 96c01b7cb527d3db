package filter

import (
	"sort"
	"strings"

	"github.com/abhisek/mbeprep/internal/quiz"
)

// CategoryOption is a main category and the subcategories seen under it.
type CategoryOption struct {
	Name          string
	SubCategories []string
	Count         int
}

// Options lists the values a user can filter on.
type Options struct {
	Categories []CategoryOption
	Providers  []string
}

// DiscoverOptions collects sorted unique categories (with subcategories)
// and providers from questions. Blank values are skipped.
func DiscoverOptions(questions []*quiz.Question) Options {
	cats := make(map[string]*CategoryOption)
	subSeen := make(map[string]map[string]bool)
	providers := make(map[string]bool)

	for _, q := range questions {
		if name := strings.TrimSpace(q.Category); name != "" {
			opt, ok := cats[name]
			if !ok {
				opt = &CategoryOption{Name: name}
				cats[name] = opt
				subSeen[name] = make(map[string]bool)
			}
			opt.Count++
			if sub := strings.TrimSpace(q.SubCategory); sub != "" && !subSeen[name][sub] {
				subSeen[name][sub] = true
				opt.SubCategories = append(opt.SubCategories, sub)
			}
		}
		if p := strings.TrimSpace(q.Provider()); p != "" {
			providers[p] = true
		}
	}

	var out Options
	for _, opt := range cats {
		sort.Strings(opt.SubCategories)
		out.Categories = append(out.Categories, *opt)
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		return out.Categories[i].Name < out.Categories[j].Name
	})
	for p := range providers {
		out.Providers = append(out.Providers, p)
	}
	sort.Strings(out.Providers)
	return out
}

// ParseCategories turns "Torts:Negligence,Torts:Strict Liability,Contracts"
// style selections into a category map. A bare category selects all of its
// subcategories.
func ParseCategories(specs []string) map[string][]string {
	if len(specs) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, spec := range specs {
		cat, sub, hasSub := strings.Cut(spec, ":")
		cat = strings.TrimSpace(cat)
		if cat == "" {
			continue
		}
		if _, ok := out[cat]; !ok {
			out[cat] = []string{}
		}
		if sub = strings.TrimSpace(sub); hasSub && sub != "" {
			out[cat] = append(out[cat], sub)
		}
	}
	return out
}
