/*
Package workflow implements the RunWorkflow use case: one conversational turn
applied to an AgentSession.

The protocol is strictly sequential and stops at the first failure:

 1. validate the input
 2. load the session, or start a fresh one
 3. register the user message
 4. classify the raw input (classifier errors and panics become ErrClassificationFailed)
 5. build the ConversationIntent
 6. resolve the intent on the session (low confidence is rejected here)
 7. mark the action taken (the intent label)
 8. persist the session
*/
package workflow
