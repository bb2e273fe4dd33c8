package checkpointer

import ts "github.com/samuelfneumann/tabular/timestep"

// nEpisode implements checkpointing at the end of every N episodes
type nEpisode struct {
	interval int
	object   Serializable // Object to save

	// filename returns the string filename of the file to save the object
	// in.
	//
	// If each serialized object should be saved in a separate file with
	// each file having an incremented number as a suffix (e.g.
	// agent1.bin, agent2.bin, ..., agentK.bin), then use
	// FilenameEnumerator. If the filename does not matter, use
	// FileTimer instead. For example:
	//
	// n := NewNEpisode(10, object, FileTimer("agent", ".bin"))
	filename func() string
}

// NewNEpisode returns a checkpointer that checkpoints object on the last
// step of every n-th episode.
func NewNEpisode(n int, object Serializable,
	filename func() string) Checkpointer {
	if n <= 0 {
		n = 1
	}
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint saves the Checkpointer's tracked object if t ends an
// episode whose count is a multiple of the interval
func (n *nEpisode) Checkpoint(t ts.TimeStep) error {
	if t.Last() && (t.Episode+1)%n.interval == 0 {
		return Save(n.filename(), n.object)
	}
	return nil
}
