package cluster

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/segmenta/distance"
	"github.com/hupe1980/segmenta/internal/queue"
	"github.com/hupe1980/segmenta/model"
)

const (
	// DefaultMinFrac and DefaultMaxFrac define the default segment size band.
	DefaultMinFrac = 0.05
	DefaultMaxFrac = 0.10

	// DefaultMaxIterations caps the assign/update rounds.
	DefaultMaxIterations = 100

	// DefaultEpsilon is the relative dispersion improvement below which the
	// run stops early.
	DefaultEpsilon = 1e-4
)

// Params configure one partition run.
type Params struct {
	// K is the number of segments.
	K int
	// MinFrac and MaxFrac bound each segment's share of the population.
	// Both zero selects the defaults.
	MinFrac float64
	MaxFrac float64
	// Seed drives median seeding. Identical input and seed reproduce the
	// exact same partition.
	Seed int64
}

// Options for the partitioner.
type Options struct {
	// MaxIterations caps the assign/update rounds.
	MaxIterations int
	// Epsilon stops the run when the relative dispersion improvement between
	// rounds falls below it.
	Epsilon float64
	// Metric selects the distance function. Medians are component-wise, so
	// Manhattan is the natural choice.
	Metric distance.Metric
	// Workers bounds the goroutines computing distance rows.
	Workers int
}

// Partition splits the matrix into k size-bounded segments.
//
// Cancellation is honored at iteration boundaries: the best assignment so
// far is returned with Partial=true and a nil error. An unsatisfiable size
// band never fails the run; it is reported through ConstraintsMet and Notes.
func Partition(ctx context.Context, m *model.Matrix, params Params, optFns ...func(o *Options)) (*model.PartitionResult, error) {
	opts := Options{
		MaxIterations: DefaultMaxIterations,
		Epsilon:       DefaultEpsilon,
		Metric:        distance.MetricManhattan,
		Workers:       runtime.GOMAXPROCS(0),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	if params.K <= 0 {
		return nil, ErrInvalidK
	}

	if params.MinFrac == 0 && params.MaxFrac == 0 {
		params.MinFrac, params.MaxFrac = DefaultMinFrac, DefaultMaxFrac
	}

	if params.MinFrac <= 0 || params.MaxFrac > 1 || params.MinFrac > params.MaxFrac {
		return nil, &ErrInvalidFraction{Min: params.MinFrac, Max: params.MaxFrac}
	}

	distFn, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	prep, err := Prepare(m)
	if err != nil {
		return nil, err
	}

	n := len(prep.RecordIDs)
	if n < params.K {
		return nil, fmt.Errorf("%w: %d records for k=%d", ErrInsufficientData, n, params.K)
	}

	r := newRun(prep, params, &opts, distFn)

	return r.execute(ctx), nil
}

// run holds the mutable state of one partition execution.
type run struct {
	prep *Prepared
	p    Params
	o    *Options
	dist distance.Func

	n, k, dim int

	// minCount/maxCount are the requested bounds; capCount is the cap
	// actually enforced during assignment, relaxed when k*maxCount < n.
	minCount, maxCount, capCount int

	medians []float32 // k*dim, row-major
	assign  []int
	counts  []int
	d       []float32 // n*k distance buffer, refreshed each iteration

	degenerate bool
	notes      []string
}

func newRun(prep *Prepared, p Params, o *Options, distFn distance.Func) *run {
	n := len(prep.RecordIDs)

	r := &run{
		prep:     prep,
		p:        p,
		o:        o,
		dist:     distFn,
		n:        n,
		k:        p.K,
		dim:      prep.Dim,
		minCount: int(math.Ceil(p.MinFrac * float64(n))),
		maxCount: int(math.Floor(p.MaxFrac * float64(n))),
		assign:   make([]int, n),
		counts:   make([]int, p.K),
		d:        make([]float32, n*p.K),
	}

	for i := range r.assign {
		r.assign[i] = -1
	}

	r.capCount = r.maxCount
	if r.capCount*r.k < n {
		// The band cannot hold the population. Raise the enforced cap so
		// every record still gets a segment; the result reports the breach.
		r.capCount = (n + r.k - 1) / r.k
		r.notes = append(r.notes, fmt.Sprintf(
			"size band [%d, %d] cannot hold %d records across %d segments; cap relaxed to %d",
			r.minCount, r.maxCount, n, r.k, r.capCount))
	}

	if r.minCount*r.k > n {
		r.notes = append(r.notes, fmt.Sprintf(
			"minimum segment size %d is unreachable for %d records across %d segments",
			r.minCount, n, r.k))
	}

	return r
}

func (r *run) vec(i int) []float32 {
	return r.prep.Vectors[i*r.dim : (i+1)*r.dim]
}

func (r *run) median(g int) []float32 {
	return r.medians[g*r.dim : (g+1)*r.dim]
}

func (r *run) execute(ctx context.Context) *model.PartitionResult {
	r.seed()

	var (
		converged bool
		partial   bool
		iters     int
		prevDisp  = math.Inf(1)
	)

	for iter := 1; iter <= r.o.MaxIterations; iter++ {
		iters = iter

		changed := r.assignRecords(iter)
		r.fillUnderflows()

		disp := r.totalDispersion()
		r.updateMedians()

		if !changed {
			converged = true
			break
		}

		if prevDisp-disp < r.o.Epsilon*math.Max(prevDisp, 1) {
			converged = true
			break
		}
		prevDisp = disp

		if ctx.Err() != nil {
			partial = true
			break
		}
	}

	return r.buildResult(iters, converged, partial)
}

// seed picks k initial medians: the first uniformly from the seeded RNG, the
// rest by greedy farthest-point selection with ties broken by record index.
func (r *run) seed() {
	rng := rand.New(rand.NewSource(r.p.Seed))

	chosen := make([]int, 0, r.k)
	taken := make([]bool, r.n)

	first := rng.Intn(r.n)
	chosen = append(chosen, first)
	taken[first] = true

	minDist := make([]float32, r.n)
	for i := 0; i < r.n; i++ {
		minDist[i] = r.dist(r.vec(i), r.vec(first))
	}

	for len(chosen) < r.k {
		best, bestDist := -1, float32(-1)
		for i := 0; i < r.n; i++ {
			if taken[i] {
				continue
			}
			if minDist[i] > bestDist {
				best, bestDist = i, minDist[i]
			}
		}

		chosen = append(chosen, best)
		taken[best] = true

		for i := 0; i < r.n; i++ {
			if d := r.dist(r.vec(i), r.vec(best)); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	r.medians = make([]float32, r.k*r.dim)
	for g, rec := range chosen {
		copy(r.median(g), r.vec(rec))
	}
}

// assignRecords recomputes the distance buffer, then greedily assigns records
// most-confident-first under the per-segment cap. Returns whether any
// assignment changed.
func (r *run) assignRecords(iter int) bool {
	r.computeDistances()

	if iter == 1 {
		r.detectDegenerate()
	}

	order := r.confidenceOrder()

	newAssign := make([]int, r.n)
	for g := range r.counts {
		r.counts[g] = 0
	}

	ranked := make([]int, r.k)
	changed := false

	for _, rec := range order {
		r.rankSegments(rec, ranked)

		g := ranked[0]
		for _, cand := range ranked {
			if r.counts[cand] < r.capCount {
				g = cand
				break
			}
		}

		newAssign[rec] = g
		r.counts[g]++
		if r.assign[rec] != g {
			changed = true
		}
	}

	r.assign = newAssign

	return changed
}

// computeDistances fills d[i*k+g] for all records against current medians,
// splitting rows across workers.
func (r *run) computeDistances() {
	var g errgroup.Group
	g.SetLimit(r.o.Workers)

	chunk := (r.n + r.o.Workers - 1) / r.o.Workers
	for start := 0; start < r.n; start += chunk {
		start := start
		end := start + chunk
		if end > r.n {
			end = r.n
		}

		g.Go(func() error {
			for i := start; i < end; i++ {
				v := r.vec(i)
				for s := 0; s < r.k; s++ {
					r.d[i*r.k+s] = r.dist(v, r.median(s))
				}
			}
			return nil
		})
	}

	_ = g.Wait()
}

// detectDegenerate flags inputs with no usable spread: every record sits at
// the same distance from every median.
func (r *run) detectDegenerate() {
	if len(r.d) == 0 {
		return
	}

	first := r.d[0]
	for _, v := range r.d[1:] {
		if v != first {
			return
		}
	}

	r.degenerate = true
	r.notes = append(r.notes, "input has no usable spread; ties broken by record order")
}

// confidenceOrder sorts records by the margin between their second-best and
// best segment, descending, so confident records claim capacity first.
// Record index breaks ties.
func (r *run) confidenceOrder() []int {
	margins := make([]float32, r.n)
	for i := 0; i < r.n; i++ {
		best, second := float32(math.MaxFloat32), float32(math.MaxFloat32)
		for s := 0; s < r.k; s++ {
			d := r.d[i*r.k+s]
			switch {
			case d < best:
				best, second = d, best
			case d < second:
				second = d
			}
		}
		if r.k == 1 {
			second = best
		}
		margins[i] = second - best
	}

	order := make([]int, r.n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return margins[order[a]] > margins[order[b]]
	})

	return order
}

// rankSegments fills ranked with segment IDs ordered by distance to rec,
// ascending, ties by segment ID.
func (r *run) rankSegments(rec int, ranked []int) {
	for s := range ranked {
		ranked[s] = s
	}
	row := r.d[rec*r.k : (rec+1)*r.k]
	sort.SliceStable(ranked, func(a, b int) bool {
		return row[ranked[a]] < row[ranked[b]]
	})
}

// fillUnderflows pulls boundary records into under-filled segments. Donors
// must stay at or above the minimum; per under-filled segment the records
// with the smallest reassignment cost move first.
func (r *run) fillUnderflows() {
	pq := queue.NewMin(r.n)

	for {
		g := -1
		for s := 0; s < r.k; s++ {
			if r.counts[s] < r.minCount {
				g = s
				break
			}
		}
		if g == -1 {
			return
		}

		pq.Reset()
		for rec := 0; rec < r.n; rec++ {
			cur := r.assign[rec]
			if cur == g || r.counts[cur] <= r.minCount {
				continue
			}
			delta := r.d[rec*r.k+g] - r.d[rec*r.k+cur]
			pq.Push(queue.Item{Record: rec, Priority: delta})
		}

		moved := false
		for r.counts[g] < r.minCount {
			item, ok := pq.Pop()
			if !ok {
				break
			}

			rec := item.Record
			donor := r.assign[rec]
			// Donor counts drift while draining the queue; revalidate.
			if donor == g || r.counts[donor] <= r.minCount {
				continue
			}

			r.assign[rec] = g
			r.counts[donor]--
			r.counts[g]++
			moved = true
		}

		if !moved {
			return
		}
	}
}

// updateMedians recomputes each segment representative as the component-wise
// median of its members. Segments left empty keep their previous median.
func (r *run) updateMedians() {
	members := make([][]int, r.k)
	for rec, g := range r.assign {
		members[g] = append(members[g], rec)
	}

	scratch := make([]float32, 0, r.n)
	for g := 0; g < r.k; g++ {
		if len(members[g]) == 0 {
			continue
		}
		med := r.median(g)
		for dim := 0; dim < r.dim; dim++ {
			scratch = scratch[:0]
			for _, rec := range members[g] {
				scratch = append(scratch, r.prep.Vectors[rec*r.dim+dim])
			}
			med[dim] = medianF32(scratch)
		}
	}
}

func (r *run) totalDispersion() float64 {
	var total float64
	for rec, g := range r.assign {
		total += float64(r.d[rec*r.k+g])
	}
	return total
}

func (r *run) buildResult(iters int, converged, partial bool) *model.PartitionResult {
	members := make([][]int, r.k)
	for rec, g := range r.assign {
		members[g] = append(members[g], rec)
	}

	res := &model.PartitionResult{
		Segments:       make([]model.Segment, r.k),
		Assignments:    append([]int(nil), r.assign...),
		ConstraintsMet: true,
		Partial:        partial,
		Converged:      converged,
		Iterations:     iters,
		DroppedColumns: r.prep.Dropped,
		Degenerate:     r.degenerate,
		Notes:          r.notes,
	}

	for g := 0; g < r.k; g++ {
		med := r.median(g)

		var disp float64
		ids := make([]string, len(members[g]))
		for i, rec := range members[g] {
			ids[i] = r.prep.RecordIDs[rec]
			disp += float64(r.dist(r.vec(rec), med))
		}
		if len(members[g]) > 0 {
			disp /= float64(len(members[g]))
		}

		size := len(members[g])
		within := size >= r.minCount && size <= r.maxCount

		res.Segments[g] = model.Segment{
			ID:           g,
			Members:      ids,
			Size:         size,
			Fraction:     float64(size) / float64(r.n),
			Centroid:     append([]float32(nil), med...),
			Dispersion:   disp,
			WithinBounds: within,
			Deviations:   r.deviations(members[g]),
		}
		res.TotalDispersion += disp * float64(size)

		if !within {
			res.ConstraintsMet = false
			res.Notes = append(res.Notes, fmt.Sprintf(
				"segment %d size %d outside [%d, %d]", g, size, r.minCount, r.maxCount))
		}
	}

	return res
}

// deviations profiles a segment against the population per encoded dimension,
// in population standard deviation units.
func (r *run) deviations(members []int) []model.DeviationStat {
	if len(members) == 0 {
		return nil
	}

	stats := make([]model.DeviationStat, r.dim)
	for dim := 0; dim < r.dim; dim++ {
		var sum float64
		for _, rec := range members {
			sum += float64(r.prep.Vectors[rec*r.dim+dim])
		}
		encMean := sum / float64(len(members))

		popMean := r.prep.PopMean[dim]
		popStd := r.prep.PopStd[dim]

		segMean := encMean
		dev := encMean
		if r.prep.Standardized[dim] {
			// Encoded values are z-scores; map back to raw units.
			segMean = popMean + encMean*popStd
		} else {
			dev = (encMean - popMean) / popStd
		}

		stats[dim] = model.DeviationStat{
			Dimension:      r.prep.DimNames[dim],
			SegmentMean:    segMean,
			PopulationMean: popMean,
			Deviation:      dev,
		}
	}

	return stats
}

func medianF32(values []float32) float32 {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
