package seed

import (
	"fmt"

	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/spawnargs"
)

// parseLOD reads the level of detail settings of a definition. It returns nil when
// the definition declares neither a hide distance nor any stage distance.
func parseLOD(args *spawnargs.Dict, bias float64) *model.LODData {
	hide := args.GetFloat("hide_distance", 0)
	lod := &model.LODData{
		FadeOutRange:    args.GetFloat("lod_fadeout_range", 0),
		FadeInRange:     args.GetFloat("lod_fadein_range", 0),
		DistCheckXYOnly: args.GetBool("dist_check_xy", false),
	}
	if hide > 0 {
		lod.HideDistSq = hide * hide * bias * bias
	}

	declared := hide > 0
	lod.Stages[0].Model = args.GetString("model", "")
	lod.Stages[0].Skin = args.GetString("skin", "")
	for i := 1; i < model.LODLevels; i++ {
		d := args.GetFloat(fmt.Sprintf("lod_%d_distance", i), 0)
		if d > 0 {
			declared = true
			lod.Stages[i].DistSq = d * d * bias * bias
		}
		lod.Stages[i].Model = args.GetString(fmt.Sprintf("model_lod_%d", i), "")
		lod.Stages[i].Skin = args.GetString(fmt.Sprintf("skin_lod_%d", i), "")
		lod.Stages[i].NoShadows = args.GetBool(fmt.Sprintf("noshadows_lod_%d", i), false)
	}
	if !declared {
		return nil
	}
	return lod
}
