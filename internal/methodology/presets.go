package methodology

import "fmt"

// Preset returns a built-in methodology by name. Presets are hard-coded and
// never touch the filesystem.
func Preset(name string) (*Model, error) {
	switch name {
	case "default":
		return mustParse(defaultTemplate), nil
	case "scrum":
		return mustParse(scrumTemplate), nil
	default:
		return nil, fmt.Errorf("unknown methodology preset %q", name)
	}
}

// Default returns the built-in default methodology.
func Default() *Model {
	return mustParse(defaultTemplate)
}

func mustParse(doc string) *Model {
	m, err := FromJSON([]byte(doc))
	if err != nil {
		panic("built-in methodology invalid: " + err.Error())
	}
	return m
}

const defaultTemplate = `{
  "version": "1.0.0",
  "name": "default",
  "description": "Minimal governance flow: submit for review, quorum of approvers, activate, complete.",
  "state_transitions": {
    "review": {
      "from": ["draft"],
      "requires": {
        "command": "gv task submit",
        "signatures": {
          "__default__": {
            "role": "submitter",
            "capability_roles": ["author"],
            "min_approvals": 1
          }
        }
      }
    },
    "ready": {
      "from": ["review"],
      "requires": {
        "command": "gv task approve",
        "signatures": {
          "__default__": {
            "role": "approver",
            "capability_roles": ["approver:product"],
            "min_approvals": 1
          }
        }
      }
    },
    "active": {
      "from": ["ready", "paused"],
      "requires": {
        "event": "task.activated"
      }
    },
    "paused": {
      "from": ["active"],
      "requires": {
        "event": "task.paused"
      }
    },
    "done": {
      "from": ["active"],
      "requires": {
        "command": "gv task complete",
        "signatures": {
          "quality": {
            "role": "approver",
            "capability_roles": ["approver:quality"],
            "min_approvals": 1
          }
        }
      }
    },
    "archived": {
      "from": ["done"],
      "requires": {
        "event": "task.archived"
      }
    },
    "discarded": {
      "from": ["draft", "review", "ready", "paused"],
      "requires": {
        "command": "gv task cancel"
      }
    }
  },
  "view_configs": {
    "default": {
      "columns": {
        "Backlog": ["draft", "review"],
        "To Do": ["ready"],
        "In Progress": ["active", "paused"],
        "Done": ["done", "archived"]
      },
      "layout": "horizontal"
    },
    "kanban-7col": {
      "columns": {
        "Draft": ["draft"],
        "Review": ["review"],
        "Ready": ["ready"],
        "Active": ["active"],
        "Blocked": ["paused"],
        "Done": ["done"],
        "Archived": ["archived"]
      },
      "layout": "horizontal"
    }
  }
}`

const scrumTemplate = `{
  "version": "1.0.0",
  "name": "scrum",
  "description": "Sprint-driven flow: tasks must be assigned before approval and belong to an active sprint before activation.",
  "state_transitions": {
    "review": {
      "from": ["draft"],
      "requires": {
        "command": "gv task submit",
        "signatures": {
          "__default__": {
            "role": "submitter",
            "capability_roles": ["author"],
            "min_approvals": 1
          }
        }
      }
    },
    "ready": {
      "from": ["review"],
      "requires": {
        "command": "gv task approve",
        "custom_rules": ["sprint-assignment"],
        "signatures": {
          "product": {
            "role": "approver",
            "capability_roles": ["approver:product", "product-owner"],
            "min_approvals": 1,
            "actor_type": "human"
          }
        }
      }
    },
    "active": {
      "from": ["ready", "paused"],
      "requires": {
        "event": "task.activated",
        "custom_rules": ["sprint-capacity"]
      }
    },
    "paused": {
      "from": ["active"],
      "requires": {
        "event": "task.paused"
      }
    },
    "done": {
      "from": ["active"],
      "requires": {
        "command": "gv task complete",
        "custom_rules": ["epic-split"],
        "signatures": {
          "quality": {
            "role": "approver",
            "capability_roles": ["approver:quality", "scrum-master"],
            "min_approvals": 2
          }
        }
      }
    },
    "archived": {
      "from": ["done"],
      "requires": {
        "event": "task.archived"
      }
    },
    "discarded": {
      "from": ["draft", "review", "ready", "paused"],
      "requires": {
        "command": "gv task cancel",
        "signatures": {
          "product": {
            "role": "approver",
            "capability_roles": ["product-owner"],
            "min_approvals": 1
          }
        }
      }
    }
  },
  "custom_rules": {
    "sprint-assignment": {
      "description": "Task has a resolved assignment before it can be approved",
      "validation": "assignment_required"
    },
    "sprint-capacity": {
      "description": "Task belongs to an in-flight sprint",
      "validation": "sprint_capacity"
    },
    "epic-split": {
      "description": "Task spanning too many sprints must be split before completion",
      "validation": "epic_complexity",
      "parameters": {
        "max_cycles": 2
      }
    }
  },
  "view_configs": {
    "sprint": {
      "columns": {
        "Sprint Backlog": ["ready"],
        "In Progress": ["active"],
        "Blocked": ["paused"],
        "Done": ["done"]
      },
      "layout": "horizontal"
    }
  }
}`
