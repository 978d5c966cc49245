package level

import (
	"fmt"

	"github.com/worship-game/maupack/asseterr"
)

// ObjectType identifies the kind of a placed object. The values are read by
// the engine and must not be reordered.
type ObjectType uint8

const (
	ObjectPlayerSpawn ObjectType = iota
	ObjectLightSourceWhite
	ObjectLightSourceRed
	ObjectLightSourceGreen
	ObjectLightSourceBlue
	ObjectLightSourceOrange
	ObjectArmor
	ObjectArmorShard
	ObjectHealth
	ObjectShells
	ObjectShotgun
	ObjectGrenades
	ObjectGrenadeLauncher
	ObjectEnemyLight
	ObjectPlasmaRifle
	ObjectPlasmaCells
	ObjectEnemyMedium
	ObjectEnemyHeavy
)

// Object names as used in the editor's entities layer
var objectNames = [...]string{
	ObjectPlayerSpawn:       "player-spawn",
	ObjectLightSourceWhite:  "light-source-white",
	ObjectLightSourceRed:    "light-source-red",
	ObjectLightSourceGreen:  "light-source-green",
	ObjectLightSourceBlue:   "light-source-blue",
	ObjectLightSourceOrange: "light-source-orange",
	ObjectArmor:             "armor",
	ObjectArmorShard:        "armor-shard",
	ObjectHealth:            "health",
	ObjectShells:            "shells",
	ObjectShotgun:           "shotgun",
	ObjectGrenades:          "grenades",
	ObjectGrenadeLauncher:   "grenade-launcher",
	ObjectEnemyLight:        "enemy-light",
	ObjectPlasmaRifle:       "plasma-rifle",
	ObjectPlasmaCells:       "plasma-cells",
	ObjectEnemyMedium:       "enemy-medium",
	ObjectEnemyHeavy:        "enemy-heavy",
}

var objectTypes = func() map[string]ObjectType {
	m := make(map[string]ObjectType, len(objectNames))
	for i, name := range objectNames {
		m[name] = ObjectType(i)
	}
	return m
}()

// ParseObjectType returns the type for an editor object name. Unknown names
// are an error; there is no fallback type.
func ParseObjectType(name string) (ObjectType, error) {
	t, ok := objectTypes[name]
	if !ok {
		return 0, asseterr.New(asseterr.ErrUnknownMapping, "level: unknown object %q", name)
	}
	return t, nil
}

func (t ObjectType) String() string {
	if int(t) < len(objectNames) {
		return objectNames[t]
	}
	return fmt.Sprintf("ObjectType(%d)", uint8(t))
}
