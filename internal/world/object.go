package world

import (
	"sync"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
)

// Object is a live object placed in the world.
type Object struct {
	id        model.EntityID
	classname string
	name      string

	mu        sync.RWMutex
	origin    geom.Vec3
	axis      geom.Mat3
	modelName string
	model     model.ModelHandle
	clip      model.ShapeHandle
	skin      string
	color     geom.Vec3
	composite *model.Composite
	velocity  geom.Vec3
}

// NewObject creates an object at origin with an identity axis.
func NewObject(id model.EntityID, classname, name string, origin geom.Vec3) *Object {
	return &Object{
		id:        id,
		classname: classname,
		name:      name,
		origin:    origin,
		axis:      geom.Identity(),
		color:     geom.Vec3{1, 1, 1},
	}
}

// ID returns the entity id.
func (o *Object) ID() model.EntityID { return o.id }

// Classname returns the definition the object was spawned from.
func (o *Object) Classname() string { return o.classname }

// Name returns the object name.
func (o *Object) Name() string { return o.name }

// Origin returns the current position.
func (o *Object) Origin() geom.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.origin
}

// Axis returns the current orientation.
func (o *Object) Axis() geom.Mat3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.axis
}

// SetAxis changes the orientation.
func (o *Object) SetAxis(axis geom.Mat3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.axis = axis
}

// setOrigin is only called by World.MoveObject, which keeps regions in sync.
func (o *Object) setOrigin(origin geom.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.origin = origin
}

// Model returns the visual of the object and its model name.
func (o *Object) Model() (model.ModelHandle, string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.model, o.modelName
}

// SetModel replaces the visual and collision shape.
func (o *Object) SetModel(name string, h model.ModelHandle, clip model.ShapeHandle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if name != "" {
		o.modelName = name
	}
	o.model = h
	o.clip = clip
}

// Clip returns the collision shape owned by the object.
func (o *Object) Clip() model.ShapeHandle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.clip
}

// Skin returns the skin name.
func (o *Object) Skin() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.skin
}

// SetSkin changes the skin.
func (o *Object) SetSkin(skin string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skin = skin
}

// Color returns the shader colour.
func (o *Object) Color() geom.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.color
}

// SetColor changes the shader colour.
func (o *Object) SetColor(c geom.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.color = c
}

// Composite returns the attached composite, or nil.
func (o *Object) Composite() *model.Composite {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.composite
}

// AttachComposite makes the object render and collide as c.
func (o *Object) AttachComposite(c *model.Composite) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.composite = c
	o.model = c.Handle
	o.modelName = c.Model
}

// Velocity returns the linear velocity.
func (o *Object) Velocity() geom.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.velocity
}

// SetVelocity changes the linear velocity.
func (o *Object) SetVelocity(v geom.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.velocity = v
}

// Live returns the view of o a distribution adopts.
func (o *Object) Live() model.LiveObject {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return model.LiveObject{
		ID:        o.id,
		Classname: o.classname,
		Origin:    o.origin,
		Axis:      o.axis,
		Skin:      o.skin,
	}
}
