package connector_test

import (
	"fmt"

	"github.com/matzehuels/slidekit/pkg/core/connector"
	"github.com/matzehuels/slidekit/pkg/core/geom"
)

func ExampleBBox() {
	src := geom.Rect{X: 0, Y: 0, W: 100, H: 100}
	tgt := geom.Rect{X: 200, Y: 0, W: 100, H: 100}

	p := connector.BBox(src, tgt, connector.RightToLeft)
	fmt.Println(p.Rect, p.FlipH, p.FlipV)
	fmt.Println(p.SourceAnchor, p.TargetAnchor)
	// Output:
	// {x=100 y=50 w=100 h=1} false false
	// right left
}

func ExampleDefaultRoute() {
	path := connector.DefaultRoute(geom.Point{X: 100, Y: 50}, geom.Point{X: 200, Y: 150})
	fmt.Println(path.Points)
	fmt.Println("label at", path.Mid)
	// Output:
	// [(100,50) (150,50) (150,150) (200,150)]
	// label at (150,100)
}
