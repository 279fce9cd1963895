package evolution

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/terrarium/traits"
)

const (
	// minSpeciationPopulation is the population below which everything is
	// one species.
	minSpeciationPopulation = 10
	maxSpecies              = 5
	speciationIterations    = 5
)

// Species is the result of clustering genomes into genetic groups. Only
// non-empty clusters are reported.
type Species struct {
	Count   int
	Sizes   []int
	Centers [][]float64
}

// Speciate clusters genomes by k-means over their species vectors, with k
// growing by one per 20 creatures up to maxSpecies. Initial centers are k
// distinct genomes drawn at random.
func Speciate(rng *rand.Rand, genomes []*traits.Genome) Species {
	n := len(genomes)
	if n == 0 {
		return Species{}
	}

	data := make([][]float64, n)
	for i, g := range genomes {
		data[i] = g.SpeciesVector()
	}

	if n < minSpeciationPopulation {
		return Species{Count: 1, Sizes: []int{n}, Centers: [][]float64{mean(data, nil)}}
	}

	k := min(maxSpecies, max(1, n/20))
	centers := make([][]float64, k)
	for i, idx := range rng.Perm(n)[:k] {
		centers[i] = append([]float64(nil), data[idx]...)
	}

	clusters := make([][]int, k)
	for range speciationIterations {
		for c := range clusters {
			clusters[c] = clusters[c][:0]
		}
		for i, v := range data {
			c := nearest(v, centers)
			clusters[c] = append(clusters[c], i)
		}
		for c, members := range clusters {
			if len(members) > 0 {
				centers[c] = mean(data, members)
			}
		}
	}

	var s Species
	for c, members := range clusters {
		if len(members) == 0 {
			continue
		}
		s.Count++
		s.Sizes = append(s.Sizes, len(members))
		s.Centers = append(s.Centers, centers[c])
	}
	return s
}

// nearest returns the index of the center closest to v.
func nearest(v []float64, centers [][]float64) int {
	best, bestDist := 0, floats.Distance(v, centers[0], 2)
	for c := 1; c < len(centers); c++ {
		if d := floats.Distance(v, centers[c], 2); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// mean averages the selected rows of data, or all rows when members is nil.
func mean(data [][]float64, members []int) []float64 {
	out := make([]float64, len(data[0]))
	if members == nil {
		for _, v := range data {
			floats.Add(out, v)
		}
		floats.Scale(1/float64(len(data)), out)
		return out
	}
	for _, i := range members {
		floats.Add(out, data[i])
	}
	floats.Scale(1/float64(len(members)), out)
	return out
}

// Preview is a cheap single-pass clustering over the 7-dimensional genome
// profile: k = n/10+1 capped at maxSpecies, k distinct random centers, one
// assignment pass. Populations under five creatures are not clustered.
// Centers are the member means.
func Preview(rng *rand.Rand, genomes []*traits.Genome) Species {
	n := len(genomes)
	if n < 5 {
		return Species{}
	}

	data := make([][]float64, n)
	for i, g := range genomes {
		data[i] = g.ProfileVector()
	}

	k := min(maxSpecies, n/10+1)
	seeds := make([][]float64, k)
	for i, idx := range rng.Perm(n)[:k] {
		seeds[i] = data[idx]
	}

	clusters := make([][]int, k)
	for i, v := range data {
		c := nearest(v, seeds)
		clusters[c] = append(clusters[c], i)
	}

	var s Species
	for _, members := range clusters {
		if len(members) == 0 {
			continue
		}
		s.Count++
		s.Sizes = append(s.Sizes, len(members))
		s.Centers = append(s.Centers, mean(data, members))
	}
	return s
}
