package rsmscene

import (
	"github.com/Faultbox/objexport/pkg/formats"
	"github.com/Faultbox/objexport/pkg/math"
)

// keySpan finds the keys surrounding timeMs in frames sorted ascending and
// returns their indices and the blend factor between them. Before the first
// key and after the last one the nearest key is held.
func keySpan(n int, frame func(int) int32, timeMs float32) (prev, next int, t float32) {
	for i := 0; i < n; i++ {
		if float32(frame(i)) > timeMs {
			next = i
			break
		}
		prev = i
		next = i
	}
	if prev == next {
		return prev, next, 0
	}
	f0, f1 := frame(prev), frame(next)
	if f1 != f0 {
		t = (timeMs - float32(f0)) / float32(f1-f0)
	}
	return prev, next, t
}

func quatOf(k formats.RSMRotKeyframe) math.Quat {
	return math.Quat{X: k.Quaternion[0], Y: k.Quaternion[1], Z: k.Quaternion[2], W: k.Quaternion[3]}
}

// rotationAt poses rotation keys at timeMs.
func rotationAt(keys []formats.RSMRotKeyframe, timeMs float32) math.Quat {
	if len(keys) == 0 {
		return math.QuatIdentity()
	}
	prev, next, t := keySpan(len(keys), func(i int) int32 { return keys[i].Frame }, timeMs)
	if prev == next {
		return quatOf(keys[prev])
	}
	return quatOf(keys[prev]).Slerp(quatOf(keys[next]), t)
}

// scaleAt poses scale keys at timeMs.
func scaleAt(keys []formats.RSMScaleKeyframe, timeMs float32) [3]float32 {
	if len(keys) == 0 {
		return [3]float32{1, 1, 1}
	}
	prev, next, t := keySpan(len(keys), func(i int) int32 { return keys[i].Frame }, timeMs)
	if prev == next {
		return keys[prev].Scale
	}
	return math.LerpVec3(keys[prev].Scale, keys[next].Scale, t)
}
