package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create users table
			CREATE TABLE users (
				id UUID PRIMARY KEY,
				email VARCHAR(320) NOT NULL,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE UNIQUE INDEX idx_users_email ON users(LOWER(email));

			-- Create workflows table
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_created_by ON workflows(created_by);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			-- Create permissions table: one row per (user, workflow, type) grant
			CREATE TABLE permissions (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				permission_type VARCHAR(16) NOT NULL CHECK (permission_type IN ('view', 'edit', 'delete')),
				created_by UUID NOT NULL REFERENCES users(id),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (user_id, workflow_id, permission_type)
			);

			CREATE INDEX idx_permissions_workflow_id ON permissions(workflow_id);
		`,
		2: `
			-- Create nodes table
			CREATE TABLE nodes (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				node_type VARCHAR(16) NOT NULL CHECK (node_type IN ('start', 'message', 'condition', 'end')),
				created_by UUID NOT NULL REFERENCES users(id),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (id, node_type)
			);

			CREATE INDEX idx_nodes_workflow_id ON nodes(workflow_id);

			-- Create node_configurations table: one row per node, variant columns gated by node_type
			CREATE TABLE node_configurations (
				id UUID PRIMARY KEY,
				node_id UUID NOT NULL UNIQUE,
				node_type VARCHAR(16) NOT NULL,
				text TEXT,
				status VARCHAR(16) CHECK (status IN ('pending', 'sent', 'opened')),
				condition TEXT,
				created_by UUID NOT NULL REFERENCES users(id),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				FOREIGN KEY (node_id, node_type) REFERENCES nodes(id, node_type) ON DELETE CASCADE,
				CHECK ((node_type = 'message') = (text IS NOT NULL)),
				CHECK (node_type = 'message' OR status IS NULL),
				CHECK ((node_type = 'condition') = (condition IS NOT NULL))
			);

			-- Create edges table
			CREATE TABLE edges (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				source_node_id UUID NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
				target_node_id UUID NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
				status SMALLINT NOT NULL DEFAULT 0 CHECK (status IN (-1, 0, 1)),
				created_by UUID NOT NULL REFERENCES users(id),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (source_node_id, target_node_id)
			);

			CREATE INDEX idx_edges_workflow_id ON edges(workflow_id);
		`,
	}
}
