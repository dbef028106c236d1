package component

import "fmt"

// SetProperty applies one scene or template override by its document name.
func (r *Rigidbody) SetProperty(name string, value any) error {
	switch name {
	case "x":
		return setFloat(&r.X, name, value)
	case "y":
		return setFloat(&r.Y, name, value)
	case "width":
		return setFloat(&r.Width, name, value)
	case "height":
		return setFloat(&r.Height, name, value)
	case "radius":
		return setFloat(&r.Radius, name, value)
	case "friction":
		return setFloat(&r.Friction, name, value)
	case "bounciness":
		return setFloat(&r.Bounciness, name, value)
	case "gravity_scale":
		return setFloat(&r.GravityScale, name, value)
	case "density":
		return setFloat(&r.Density, name, value)
	case "angular_friction":
		return setFloat(&r.AngularFriction, name, value)
	case "rotation":
		return setFloat(&r.Rotation, name, value)
	case "trigger_width":
		return setFloat(&r.TriggerWidth, name, value)
	case "trigger_height":
		return setFloat(&r.TriggerHeight, name, value)
	case "trigger_radius":
		return setFloat(&r.TriggerRadius, name, value)
	case "body_type":
		return setString(&r.BodyType, name, value)
	case "collider_type":
		return setString(&r.ColliderType, name, value)
	case "trigger_type":
		return setString(&r.TriggerType, name, value)
	case "precise":
		return setBool(&r.Precise, name, value)
	case "has_collider":
		return setBool(&r.HasCollider, name, value)
	case "has_trigger":
		return setBool(&r.HasTrigger, name, value)
	case "enabled":
		return setBool(&r.enabled, name, value)
	}
	return fmt.Errorf("rigidbody has no property %q", name)
}

// Property reads a value by its document name, for script access.
func (r *Rigidbody) Property(name string) (any, bool) {
	switch name {
	case "key":
		return r.key, true
	case "type":
		return RigidbodyType, true
	case "enabled":
		return r.enabled, true
	case "removed":
		return r.removed, true
	case "x":
		return r.Position().X, true
	case "y":
		return r.Position().Y, true
	case "width":
		return r.Width, true
	case "height":
		return r.Height, true
	case "radius":
		return r.Radius, true
	case "friction":
		return r.Friction, true
	case "bounciness":
		return r.Bounciness, true
	case "gravity_scale":
		return r.CurrentGravityScale(), true
	case "density":
		return r.Density, true
	case "angular_friction":
		return r.AngularFriction, true
	case "rotation":
		return r.RotationDegrees(), true
	case "trigger_width":
		return r.TriggerWidth, true
	case "trigger_height":
		return r.TriggerHeight, true
	case "trigger_radius":
		return r.TriggerRadius, true
	case "body_type":
		return r.BodyType, true
	case "collider_type":
		return r.ColliderType, true
	case "trigger_type":
		return r.TriggerType, true
	case "precise":
		return r.Precise, true
	case "has_collider":
		return r.HasCollider, true
	case "has_trigger":
		return r.HasTrigger, true
	}
	return nil, false
}

func setFloat(dst *float64, name string, v any) error {
	switch n := v.(type) {
	case float64:
		*dst = n
	case int:
		*dst = float64(n)
	case int64:
		*dst = float64(n)
	default:
		return fmt.Errorf("%s: want number, got %T", name, v)
	}
	return nil
}

func setString(dst *string, name string, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%s: want string, got %T", name, v)
	}
	*dst = s
	return nil
}

func setBool(dst *bool, name string, v any) error {
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("%s: want bool, got %T", name, v)
	}
	*dst = b
	return nil
}
