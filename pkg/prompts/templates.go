package prompts

import "fmt"

// lookTemplate turns nearby entity property dumps into what the player sees.
// The response is expected inside <description> tags.
const lookTemplate = `You are tasked with generating concise descriptions for objects in a game. When a player uses the 'look' command, your description will be what they see. Your goal is to create a natural-sounding description based solely on the properties provided, without adding speculative elements.
Here are the object properties to describe:
<object_properties>
%s
</object_properties>
Follow these guidelines to create your description:

Write in natural language that feels immersive and game-appropriate.
Keep descriptions concise (1-3 sentences for simple objects, 3-5 for complex ones).
Focus only on observable properties - what the player would actually see, hear, or otherwise sense.
Don't mention game mechanics, stats, or properties by their technical names.
Don't speculate about elements not included in the properties.
Use sensory details when appropriate (appearance, texture, sound, smell).
If the object has a condition property, subtly incorporate it without explicitly stating the condition level.
For unique or special objects, emphasize their distinctive qualities.

<examples>
<good_example>
Properties: {name: "Rusty Sword", type: "weapon", material: "iron", condition: "poor", damage: 3}
Description: A weathered iron sword with orange-brown rust creeping along its blade. The once-sharp edge is now pitted and dull, and the leather wrapping on the handle is beginning to unravel.
</good_example>
<bad_example>
Properties: {name: "Rusty Sword", type: "weapon", material: "iron", condition: "poor", damage: 3}
Description: This is a Rusty Sword. It is a weapon made of iron in poor condition. It does 3 damage when used in combat.
</bad_example>
</examples>
Create a single paragraph description that brings the scene to life through evocative but accurate details. Don't label or categorize the objects explicitly - let the description itself reveal what they are.
Write your description in <description> tags.`

const lookAtTemplate = `You are tasked with describing an object in a text adventure game. The player has used the 'look at %s' command. Translate these object properties into a natural language description of the object: %s`

const lookAtFailTemplate = `The player has used the '%s' command. However, the object the player is trying to look at doesn't exist! Write a short comment to inform the player the command has failed.`

// deterministicActionTemplate asks for scratchpad reasoning followed by a
// bare success() or fail() verdict.
const deterministicActionTemplate = `You are an action resolution system for an adventure game. You will receive descriptions of an actor, an entity they're interacting with, and an action being attempted. Your job is to determine if the action succeeds or fails based on the actor's capabilities and the nature of the action. The actor's motives are irrelevant.

RESOLUTION RULES:
1. If the action does not require tools or skills/properties, it succeeds.
2. If the action requires a tool and the actor has an appropriate tool, the action succeeds
3. If the action requires a skill/property that the actor has or is implied to have (through background), the action succeeds
4. If the action requires both a tool and skill:
   a. Having the tool alone is sufficient for success
   b. Missing the tool results in failure
5. If none of the above conditions are met, the action fails

OUTPUT FORMAT:
First analyze the situation in your scratchpad: decide whether the action requires a skill, then whether the action requires a tool, then follow the resolution rules to reach a decision. Then output either:
- success() if the action succeeds
- fail() if the action fails

EXAMPLE:
<actor>
- name: John Smith
- background: Blacksmith
- tool: Hammer
- strength: very strong
</actor>

<entity>
- name: metal door
- locked: false
- bent: true
</entity>

<action>
Straighten the bent door using smithing skills
</action>

<scratchpad>
1. Action requires smithing skill - actor has blacksmith background
2. Action requires smithing tools - actor has hammer
3. Actor has both relevant skill and tool - action should succeed
</scratchpad>
success()

Now, analyze your inputs and determine the outcome. Write your thought process in <scratchpad> tags, then provide your command on the next line.

Here are the descriptions you will analyze:

<actor>
%s
</actor>

<entity>
%s
</entity>

<action>
%s
</action>`

// updatePropertiesTemplate runs after a successful interaction and asks for
// one set_property call per changed entity property, inside <update> tags.
const updatePropertiesTemplate = `You are an action resolution engine for an adventure game. You will receive an ACTOR description, an ENTITY description, and an ACTION that has already succeeded. Produce only the property updates for the entity, using one set_property call per changed property.

Rules:
- For every property of ENTITY that the ACTION modifies, emit a function call:
  set_property("<entity-name>", "<property-name>", <value>)
- Boolean values must be true or false.
- Numeric values stay numeric.
- String values keep the relevant original description plus the change.
- Do not mention properties that do not change.
- Do not write any narrative, commentary, or explanation to the player.
- If you need to reason, do so inside <thinking> tags first.
- Wrap all the set_property lines in a single <update> ... </update> tag.
- Preserve exact spacing and punctuation in the set_property template so downstream systems can read it.

EXAMPLE:
<actor>
- name: John Smith
- background: Blacksmith
- tool: Hammer
</actor>

<entity>
- name: metal door
- locked: false
- bent: true
- appearance: "dull iron slab"
</entity>

<action>
Straighten the bent door using smithing skills
</action>

<thinking>
Door is bent, so bent becomes false. Appearance should reflect straightening while keeping "dull iron slab".
</thinking>
<update>
set_property("metal door", "bent", false)
set_property("metal door", "appearance", "straightened dull iron slab")
</update>

Remember: the action always succeeds, update only the affected properties, and keep string descriptions rich and consistent.

<actor>
%s
</actor>

<entity>
%s
</entity>

<action>
%s
</action>`

// tradeValidationTemplate asks the backend to judge a proposed exchange and
// answer with a trade("given", "received") call naming what the actor hands
// over and what they get back, or fail() when no deal makes sense.
const tradeValidationTemplate = `You are a trade arbitration system for an adventure game. You will receive a description of an actor (including their inventory), a description of a trading partner (including their inventory), and the actor's proposed exchange. Decide whether the partner would accept the trade, judging by the rough value and usefulness of the items involved and the partner's disposition.

OUTPUT FORMAT:
First reason about the proposal in <scratchpad> tags. Then output exactly one of:
- trade("<item the actor gives>", "<item the actor receives>") if the partner accepts
- fail() if the partner refuses or the proposal names items neither side has

Both item names must be taken from the inventories provided. The actor gives an item from the actor's inventory and receives an item from the partner's inventory.

Here are the descriptions you will analyze:

<actor>
%s
</actor>

<entity>
%s
</entity>

<action>
%s
</action>`

func lookPrompt(objectProperties string) string {
	return fmt.Sprintf(lookTemplate, objectProperties)
}

func lookAtPrompt(name, properties string) string {
	return fmt.Sprintf(lookAtTemplate, name, properties)
}

func lookAtFailPrompt(command string) string {
	return fmt.Sprintf(lookAtFailTemplate, command)
}

func deterministicActionPrompt(actor, target, action string) string {
	return fmt.Sprintf(deterministicActionTemplate, actor, target, action)
}

func updatePropertiesPrompt(actor, target, action string) string {
	return fmt.Sprintf(updatePropertiesTemplate, actor, target, action)
}

func tradeValidationPrompt(actor, target, action string) string {
	return fmt.Sprintf(tradeValidationTemplate, actor, target, action)
}
