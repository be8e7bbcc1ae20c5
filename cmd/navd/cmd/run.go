package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/arl/gobj"
	"github.com/arl/gogeo/f32/d3"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/navigator"
	"github.com/argonaut-engine/navmesh/shape"
	"github.com/argonaut-engine/navmesh/tiledb"
)

var (
	runInput    string
	runDBPath   string
	runTickRate float64
)

// runCmd loads an OBJ scene, wires a navigator.Navigator over it, walks
// a scripted player path through the scene and reports the agent paths
// found along the way. It is the harness's one end-to-end smoke test.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "drive a navigator over a scripted scene",
	Long: `Load an OBJ scene and a worldspace config, wire a navigator.Navigator
over it, walk a player through up to four scripted waypoints picked
from the scene's triangles, and print the
paths an agent finds between consecutive waypoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		if runInput == "" {
			check(fmt.Errorf("--input is required"))
		}

		cfg := navconf.DefaultConfig()
		check(loadConfig(&cfg))

		dbPath := runDBPath
		if dbPath == "" {
			dbPath = ":memory:"
		}
		db, err := tiledb.Open(dbPath, cfg.MaxDbFileSize)
		check(err)

		nav := navigator.New(cfg, db, nil)
		defer nav.Close()

		tris, err := loadOBJTriangles(runInput)
		check(err)
		fmt.Printf("loaded %d triangles from '%s'\n", len(tris), runInput)

		nav.AddObject(shape.Object{
			ID:    shape.NewObjectID(),
			Shape: shape.NewTriMesh(tris),
		}, nil)

		agent := navconf.AgentBounds{
			Shape:       navconf.ShapeCylinder,
			HalfExtents: d3.Vec3{0.4, 0.9, 0.4},
		}
		if !nav.AddAgent(agent) {
			check(fmt.Errorf("default agent bounds rejected"))
		}
		defer nav.RemoveAgent(agent)

		waypoints := scriptedWaypoints(tris)
		if len(waypoints) < 2 {
			fmt.Println("scene too small to script a walk, stopping after load")
			return
		}

		// A real engine drives Update once per simulation tick rather
		// than as fast as the loop can go; --tick-rate reproduces that
		// pacing so the scripted walk behaves like an in-game one.
		limiter := rate.NewLimiter(rate.Limit(runTickRate), 1)

		deadline := 10 * time.Second
		for i, wp := range waypoints {
			check(limiter.Wait(context.Background()))
			nav.Update(wp, nil)
			if st := nav.Wait(navigator.RequiredTilesPresent, time.Now().Add(deadline), nil); st != navigator.StatusSuccess {
				fmt.Printf("waypoint %d: wait returned %s\n", i, st)
			}

			if i == 0 {
				continue
			}
			var path []d3.Vec3
			st := nav.FindPath(agent, waypoints[i-1], wp, navconf.FlagWalk, navconf.DefaultAreaCosts(), 2, &path)
			fmt.Printf("leg %d -> %d: %s, %d points\n", i-1, i, st, len(path))
		}
	},
}

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runInput, "input", "", "input scene geometry (OBJ, required)")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "persistent tile DB path (in-memory if unset)")
	runCmd.Flags().Float64Var(&runTickRate, "tick-rate", 10, "simulated engine ticks per second driving Update")
}

// loadOBJTriangles reads path as Wavefront OBJ and fan-triangulates
// every face into world-space, ground-tagged shape.Triangles.
func loadOBJTriangles(path string) ([]shape.Triangle, error) {
	of, err := gobj.Load(path)
	if err != nil {
		return nil, err
	}

	var tris []shape.Triangle
	for _, poly := range of.Polys() {
		if len(poly) < 3 {
			continue
		}
		v0 := vertexToVec3(poly[0])
		for i := 1; i < len(poly)-1; i++ {
			tris = append(tris, shape.Triangle{
				A:    v0,
				B:    vertexToVec3(poly[i]),
				C:    vertexToVec3(poly[i+1]),
				Area: navconf.AreaGround,
			})
		}
	}
	return tris, nil
}

func vertexToVec3(v gobj.Vertex) d3.Vec3 {
	return d3.Vec3{float32(v.X()), float32(v.Y()), float32(v.Z())}
}

// scriptedWaypoints picks up to four triangle vertices spread across
// the loaded geometry as a stand-in player walk, rather than requiring
// a second input file just for this demo harness.
func scriptedWaypoints(tris []shape.Triangle) []d3.Vec3 {
	if len(tris) == 0 {
		return nil
	}
	const maxWaypoints = 4
	step := len(tris) / maxWaypoints
	if step == 0 {
		step = 1
	}
	var waypoints []d3.Vec3
	for i := 0; i < len(tris) && len(waypoints) < maxWaypoints; i += step {
		waypoints = append(waypoints, tris[i].A)
	}
	return waypoints
}
