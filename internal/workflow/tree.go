package workflow

import (
	"github.com/yukikurage/taskmanager-api/internal/models"
)

// TaskNode is a task together with its subtasks.
type TaskNode struct {
	Task     models.Task
	Subtasks []*TaskNode
}

// ChildLoader returns the direct subtasks of every task in parentIDs.
type ChildLoader func(parentIDs []uint64) ([]models.Task, error)

// BuildTree expands root's subtasks breadth first, one lookup per level, for
// at most maxDepth levels. A task already placed in the tree is never placed
// again, so cyclic parent links terminate.
func BuildTree(root models.Task, loadChildren ChildLoader, maxDepth int) (*TaskNode, error) {
	forest, err := BuildForest([]models.Task{root}, loadChildren, maxDepth)
	if err != nil {
		return nil, err
	}
	return forest[0], nil
}

type placement struct {
	tree int
	id   uint64
}

type levelNode struct {
	tree int
	node *TaskNode
}

// BuildForest builds one tree per root, sharing a single lookup per level
// across all of them. Each tree is expanded independently, so a task listed
// as a root may also appear as a subtask of another root.
func BuildForest(roots []models.Task, loadChildren ChildLoader, maxDepth int) ([]*TaskNode, error) {
	seen := make(map[placement]struct{}, len(roots))
	forest := make([]*TaskNode, len(roots))
	level := make([]levelNode, 0, len(roots))
	for i, root := range roots {
		forest[i] = &TaskNode{Task: root}
		seen[placement{i, root.ID}] = struct{}{}
		level = append(level, levelNode{tree: i, node: forest[i]})
	}

	for depth := 0; depth < maxDepth && len(level) > 0; depth++ {
		byParent := make(map[uint64][]levelNode, len(level))
		ids := make([]uint64, 0, len(level))
		for _, ln := range level {
			id := ln.node.Task.ID
			if _, ok := byParent[id]; !ok {
				ids = append(ids, id)
			}
			byParent[id] = append(byParent[id], ln)
		}

		children, err := loadChildren(ids)
		if err != nil {
			return nil, err
		}

		var next []levelNode
		for _, child := range children {
			if child.ParentTaskID == nil {
				continue
			}
			for _, parent := range byParent[*child.ParentTaskID] {
				key := placement{parent.tree, child.ID}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				node := &TaskNode{Task: child}
				parent.node.Subtasks = append(parent.node.Subtasks, node)
				next = append(next, levelNode{tree: parent.tree, node: node})
			}
		}
		level = next
	}

	return forest, nil
}
