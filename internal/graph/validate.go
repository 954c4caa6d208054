package graph

// ValidateDataConnections re-derives the state of every data connection
// from the current pin declarations and returns the connections that are
// no longer Ok. Nothing is deleted.
func (g *Graph) ValidateDataConnections() []Connection {
	var invalid []Connection
	for i := range g.data {
		c := &g.data[i]
		c.State = g.connectionState(*c)
		if c.State != Ok {
			invalid = append(invalid, *c)
		}
	}
	return invalid
}

func (g *Graph) connectionState(c Connection) ConnectionState {
	fromNode, ok := g.FindNode(c.FromNode)
	if !ok {
		return NotFound
	}
	toNode, ok := g.FindNode(c.ToNode)
	if !ok {
		return NotFound
	}
	out, ok := fromNode.Outputs().Get(c.FromOutput)
	if !ok {
		return OutputMissing
	}
	in, ok := toNode.Inputs().Get(c.ToInput)
	if !ok {
		return InputMissing
	}
	if !g.converters.CanConnect(out.Type, in.Type) {
		return TypeMismatch
	}
	return Ok
}
