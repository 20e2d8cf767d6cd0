package sixaxis

import (
	"github.com/robotcell/cellsim/kinematics"
	"github.com/robotcell/cellsim/scene"
)

// numLinkVisuals is the number of box visuals: one per link from d0 to d4.
const numLinkVisuals = 5

const baseRadius = 80

type linkTier struct {
	width, chamfer float64
}

var linkTiers = [numLinkVisuals]linkTier{
	{80, 8},
	{80, 8},
	{80, 8},
	{60, 6},
	{40, 0},
}

// setY moves n along its parent's Y axis, keeping X and Z.
func setY(n scene.Node, y float64) {
	p := n.Position()
	p.Y = y
	n.SetPosition(p)
}

// layout stacks d0..d6 on the padded lengths and resizes the base and link visuals.
func layout(nodes *kinematics.NodeSet, lengths []float64) {
	baseHeight := lengths[workingLengths]
	setY(nodes.Get(jointNodeNames[0]), baseHeight)
	for i := 0; i < workingLengths; i++ {
		setY(nodes.Get(jointNodeNames[i+1]), lengths[i])
	}

	base := nodes.Get(baseNodeName)
	base.SetGeometry(scene.Cylinder{Radius: baseRadius, Height: baseHeight})
	setY(base, baseHeight/2)

	for i, tier := range linkTiers {
		link := nodes.Get(linkNodeName(i))
		link.SetGeometry(scene.Box{
			Width:         tier.width,
			Height:        lengths[i],
			Length:        tier.width,
			ChamferRadius: tier.chamfer,
		})
		setY(link, lengths[i]/2)
	}
}
