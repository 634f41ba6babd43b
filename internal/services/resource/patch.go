package resource

import (
	"context"
	"strings"

	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/scim"
	"gitlab.com/identity-lab/scim-target-api/internal/scim/patch"
	"gitlab.com/identity-lab/scim-target-api/internal/tracing"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// parsedOperation pairs a patch operation with its parsed path.
type parsedOperation struct {
	opType patch.OpType
	path   *patch.Path
	value  interface{}
}

func (s *service) PatchResource(ctx context.Context, input *PatchResourceInput) (*models.Resource, error) {
	ctx, span := tracer.Start(ctx, "svc.PatchResource")
	defer span.End()

	existing, err := s.GetResource(ctx, &GetResourceInput{
		EndpointID:   input.EndpointID,
		ResourceType: input.ResourceType,
		SCIMID:       input.SCIMID,
	})
	if err != nil {
		return nil, err
	}

	if err = checkPrecondition(existing, input.IfMatch); err != nil {
		tracing.RecordError(span, err, "precondition failed")
		return nil, err
	}

	operations, err := parseOperations(input.Request)
	if err != nil {
		tracing.RecordError(span, err, "failed to parse operations")
		return nil, err
	}

	payload, err := deepCopyDocument(existing.Payload)
	if err != nil {
		return nil, err
	}

	// Group membership is stored as edges rather than in the payload, so
	// member-targeting operations act on the loaded member set.
	memberState := &memberPatchState{}
	if input.ResourceType == models.GroupResourceType {
		if err = memberState.load(ctx, s, existing.Metadata.ID); err != nil {
			return nil, err
		}
	}

	// Operations apply in array order; a later op observes the effect of
	// an earlier one. Multiple add-member operations in one request are
	// processed sequentially either way; the tenant flag only records the
	// client's expectation.
	if input.ResourceType == models.GroupResourceType {
		addMemberOps := 0
		for _, op := range operations {
			if op.opType == patch.AddOp && op.path.TargetsAttribute("members") {
				addMemberOps++
			}
		}
		if addMemberOps > 1 && !input.Config.BoolValue(models.ConfigKeyMultiOpPatchAddMembers) {
			s.logger.Debugw("Request contains multiple add-member operations.",
				"endpointID", input.EndpointID,
				"scimID", input.SCIMID,
				"operations", addMemberOps,
			)
		}
	}

	for i := range operations {
		op := &operations[i]
		if input.ResourceType == models.GroupResourceType {
			handled, memberErr := s.applyMemberOperation(memberState, op, input.Config)
			if memberErr != nil {
				tracing.RecordError(span, memberErr, "failed to apply member operation")
				return nil, memberErr
			}
			if handled {
				continue
			}
		}

		if err = patch.Apply(payload, &patch.Operation{Type: op.opType, Path: op.path, Value: op.value}); err != nil {
			tracing.RecordError(span, err, "failed to apply operation")
			return nil, err
		}
	}

	updatedModel, err := s.rebuildModelFromPayload(existing, payload)
	if err != nil {
		tracing.RecordError(span, err, "failed to rebuild model")
		return nil, err
	}

	if err = s.checkUniqueness(ctx, updatedModel, existing.SCIMID); err != nil {
		tracing.RecordError(span, err, "uniqueness check failed")
		return nil, err
	}

	txContext, err := s.dbClient.Transactions.BeginTx(ctx)
	if err != nil {
		tracing.RecordError(span, err, "failed to begin transaction")
		return nil, err
	}
	defer func() {
		if txErr := s.dbClient.Transactions.RollbackTx(txContext); txErr != nil {
			s.logger.Errorf("failed to rollback tx: %v", txErr)
		}
	}()

	updated, err := s.dbClient.Resources.UpdateResource(txContext, updatedModel)
	if err != nil {
		tracing.RecordError(span, err, "failed to update resource")
		return nil, err
	}

	if memberState.changed {
		if err = s.replaceMemberEdges(txContext, input.EndpointID, updated.Metadata.ID, memberState.members); err != nil {
			tracing.RecordError(span, err, "failed to replace members")
			return nil, err
		}
	}

	if err := s.dbClient.Transactions.CommitTx(txContext); err != nil {
		tracing.RecordError(span, err, "failed to commit transaction")
		return nil, err
	}

	if memberState.changed && input.Config.BoolValue(models.ConfigKeyVerbosePatchSupported) {
		s.logger.Infow("Patched group membership.",
			"endpointID", input.EndpointID,
			"scimID", input.SCIMID,
			"membersBefore", memberState.beforeValues,
			"membersAfter", memberValues(memberState.members),
		)
	}

	return updated, nil
}

// parseOperations validates the PatchOp envelope and normalizes each
// operation.
func parseOperations(request *scim.PatchRequest) ([]parsedOperation, error) {
	declared := false
	for _, uri := range request.SchemaURIs {
		if strings.EqualFold(string(uri), string(scim.PatchOpSchemaURI)) {
			declared = true
			break
		}
	}
	if !declared {
		return nil, errors.New(
			"document must declare the %s schema", scim.PatchOpSchemaURI,
			errors.WithErrorCode(errors.EInvalid),
			errors.WithSCIMType(errors.SCIMTypeInvalidSyntax),
		)
	}

	if len(request.Operations) == 0 {
		return nil, errors.New(
			"at least one operation is required",
			errors.WithErrorCode(errors.EInvalid),
			errors.WithSCIMType(errors.SCIMTypeInvalidValue),
		)
	}

	operations := make([]parsedOperation, 0, len(request.Operations))
	for _, raw := range request.Operations {
		opType, err := patch.ParseOpType(raw.OP)
		if err != nil {
			return nil, err
		}

		path, err := patch.ParsePath(raw.Path)
		if err != nil {
			return nil, err
		}

		operations = append(operations, parsedOperation{
			opType: opType,
			path:   path,
			value:  raw.Value,
		})
	}

	return operations, nil
}

// memberPatchState tracks the working member set while operations apply.
type memberPatchState struct {
	members      []memberInput
	beforeValues []string
	changed      bool
}

func (m *memberPatchState) load(ctx context.Context, s *service, groupResourceID string) error {
	edges, err := s.dbClient.Members.GetMembersForGroup(ctx, groupResourceID)
	if err != nil {
		return err
	}

	m.members = make([]memberInput, 0, len(edges))
	for _, edge := range edges {
		m.members = append(m.members, memberInput{
			Value:   edge.Value,
			Type:    edge.Type,
			Display: edge.Display,
		})
	}
	m.beforeValues = memberValues(m.members)

	return nil
}

func memberValues(members []memberInput) []string {
	values := make([]string, 0, len(members))
	for _, member := range members {
		values = append(values, member.Value)
	}
	return values
}

// applyMemberOperation handles operations that target the members
// attribute of a group. Returns false when the operation is not a member
// operation and should go through the generic document engine.
func (s *service) applyMemberOperation(state *memberPatchState, op *parsedOperation, config models.EndpointConfig) (bool, error) {
	// A no-path add/replace may carry members inside its value object.
	if op.path == nil {
		values, ok := op.value.(map[string]interface{})
		if !ok {
			return false, nil
		}
		raw, found := lookupAttribute(values, "members")
		if !found {
			return false, nil
		}

		members, err := parseMemberList(raw)
		if err != nil {
			return false, err
		}

		if op.opType == patch.AddOp {
			state.add(members)
		} else {
			state.replaceAll(members)
		}

		// Strip members and let the rest of the object merge normally.
		rest := map[string]interface{}{}
		for key, value := range values {
			if !strings.EqualFold(key, "members") {
				rest[key] = value
			}
		}
		if len(rest) == 0 {
			return true, nil
		}
		op.value = rest
		return false, nil
	}

	if !op.path.TargetsAttribute("members") {
		return false, nil
	}

	switch op.opType {
	case patch.AddOp:
		members, err := parseMemberList(op.value)
		if err != nil {
			return true, err
		}
		state.add(members)
		return true, nil

	case patch.ReplaceOp:
		if op.path.Filter == nil {
			members, err := parseMemberList(op.value)
			if err != nil {
				return true, err
			}
			state.replaceAll(members)
			return true, nil
		}
		return true, state.updateMatching(op.path, op.value)

	case patch.RemoveOp:
		if op.path.Filter == nil {
			// Removing every member requires an explicit tenant opt-in.
			if !config.BoolValue(models.ConfigKeyAllowRemoveAllMembers) {
				return true, errors.New(
					"remove with no filter is not enabled for this endpoint",
					errors.WithErrorCode(errors.EInvalid),
					errors.WithSCIMType(errors.SCIMTypeNoTarget),
				)
			}
			state.replaceAll(nil)
			return true, nil
		}
		return true, state.removeMatching(op.path)
	}

	return true, nil
}

// add appends members, deduplicating by member value.
func (m *memberPatchState) add(members []memberInput) {
	existing := map[string]struct{}{}
	for _, member := range m.members {
		existing[member.Value] = struct{}{}
	}

	for _, member := range members {
		if _, duplicate := existing[member.Value]; duplicate {
			continue
		}
		existing[member.Value] = struct{}{}
		m.members = append(m.members, member)
	}

	m.changed = true
}

func (m *memberPatchState) replaceAll(members []memberInput) {
	m.members = members
	m.changed = true
}

// matchMember evaluates a member value filter against one edge.
func matchMember(member memberInput, expr *patch.FilterExpression) bool {
	var actual string
	switch strings.ToLower(expr.Attribute) {
	case "value":
		actual = member.Value
	case "display":
		actual = member.Display
	case "type":
		actual = member.Type
	default:
		return false
	}

	if expr.Operator == "eq" {
		return strings.EqualFold(actual, expr.Value)
	}
	return actual == expr.Value
}

func (m *memberPatchState) updateMatching(path *patch.Path, value interface{}) error {
	matched := false
	for i, member := range m.members {
		if !matchMember(member, path.Filter) {
			continue
		}
		matched = true

		if path.SubAttribute != "" {
			str, _ := value.(string)
			switch strings.ToLower(path.SubAttribute) {
			case "display":
				m.members[i].Display = str
			case "type":
				m.members[i].Type = str
			case "value":
				return errors.New(
					"member value is immutable",
					errors.WithErrorCode(errors.EInvalid),
					errors.WithSCIMType(errors.SCIMTypeMutability),
				)
			}
			continue
		}

		replacement, err := parseMemberList(value)
		if err != nil {
			return err
		}
		if len(replacement) != 1 {
			return errors.New(
				"replacement value must be a single member",
				errors.WithErrorCode(errors.EInvalid),
				errors.WithSCIMType(errors.SCIMTypeInvalidValue),
			)
		}
		m.members[i] = replacement[0]
	}

	if !matched {
		return errors.New(
			"no member matches the supplied filter",
			errors.WithErrorCode(errors.EInvalid),
			errors.WithSCIMType(errors.SCIMTypeNoTarget),
		)
	}

	m.changed = true
	return nil
}

func (m *memberPatchState) removeMatching(path *patch.Path) error {
	remaining := make([]memberInput, 0, len(m.members))
	matched := false

	for _, member := range m.members {
		if matchMember(member, path.Filter) {
			matched = true
			continue
		}
		remaining = append(remaining, member)
	}

	if !matched {
		return errors.New(
			"no member matches the supplied filter",
			errors.WithErrorCode(errors.EInvalid),
			errors.WithSCIMType(errors.SCIMTypeNoTarget),
		)
	}

	m.members = remaining
	m.changed = true
	return nil
}

// rebuildModelFromPayload re-derives the typed columns after patch
// application so filters and uniqueness stay consistent with the document.
func (s *service) rebuildModelFromPayload(existing *models.Resource, payload map[string]interface{}) (*models.Resource, error) {
	updated := *existing
	updated.Payload = payload
	updated.ExternalID = stringAttribute(payload, "externalId")

	switch existing.ResourceType {
	case models.UserResourceType:
		userName := stringAttribute(payload, "userName")
		if userName == "" {
			return nil, errors.New(
				"userName is required",
				errors.WithErrorCode(errors.EInvalid),
				errors.WithSCIMType(errors.SCIMTypeInvalidValue),
			)
		}
		updated.UserName = userName
		updated.Active = boolAttribute(payload, "active", existing.Active)

	case models.GroupResourceType:
		displayName := stringAttribute(payload, "displayName")
		if displayName == "" {
			return nil, errors.New(
				"displayName is required",
				errors.WithErrorCode(errors.EInvalid),
				errors.WithSCIMType(errors.SCIMTypeInvalidValue),
			)
		}
		updated.DisplayName = displayName
	}

	return &updated, nil
}
