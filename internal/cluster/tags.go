package cluster

import "sort"

// TopTags returns, for each non-noise cluster, the n most frequent tags
// after removing those in exclude. Ties are broken by first-encountered
// order, so counting is stable across runs. Clusters whose points carry
// no usable tags map to an empty slice.
func TopTags(points []Point, exclude map[string]struct{}, n int) map[int][]string {
	type tally struct {
		count map[string]int
		first map[string]int
		order []string
	}

	tallies := make(map[int]*tally)

	for _, p := range points {
		if p.Cluster == Noise {
			continue
		}
		tl, ok := tallies[p.Cluster]
		if !ok {
			tl = &tally{count: make(map[string]int), first: make(map[string]int)}
			tallies[p.Cluster] = tl
		}
		for _, tag := range p.Tags {
			if tag == "" {
				continue
			}
			if _, skip := exclude[tag]; skip {
				continue
			}
			if _, seen := tl.count[tag]; !seen {
				tl.first[tag] = len(tl.order)
				tl.order = append(tl.order, tag)
			}
			tl.count[tag]++
		}
	}

	top := make(map[int][]string, len(tallies))
	for id, tl := range tallies {
		tags := append([]string{}, tl.order...)
		sort.SliceStable(tags, func(i, j int) bool {
			ci, cj := tl.count[tags[i]], tl.count[tags[j]]
			if ci != cj {
				return ci > cj
			}
			return tl.first[tags[i]] < tl.first[tags[j]]
		})
		if len(tags) > n {
			tags = tags[:n]
		}
		top[id] = tags
	}
	return top
}

// ExcludeSet builds an exclusion set from a list of tags.
func ExcludeSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
